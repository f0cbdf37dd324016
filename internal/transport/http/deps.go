package http

import (
	"github.com/yonasKu/sproutbook-api/internal/application/batch"
	"github.com/yonasKu/sproutbook-api/internal/application/device"
	"github.com/yonasKu/sproutbook-api/internal/application/journal"
	"github.com/yonasKu/sproutbook-api/internal/application/notification"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/dynamo"
)

// Deps holds all application dependencies for the router.
type Deps struct {
	JournalSvc      journal.Service
	DeviceSvc       device.Service
	NotificationSvc notification.Service
	RecapRepo       *dynamo.RecapRepo
	Orchestrator    *batch.Orchestrator
}
