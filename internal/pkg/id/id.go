package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID string. Entries, recaps, notifications and devices all
// use ULIDs as partition keys; lexicographic order tracks creation time, which
// keeps list endpoints roughly chronological without a sort key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
