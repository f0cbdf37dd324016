package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Package-level singleton. Custom registrations must happen in init()
// before the first call to Struct.
var v = validator.New()

// Struct validates s against its validate tags and flattens the result
// into a single readable error.
func Struct(s any) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
