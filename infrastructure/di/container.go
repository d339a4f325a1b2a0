package di

import (
	"homeport-backend/application/ports"
	"homeport-backend/application/services"
	"homeport-backend/infrastructure/config"
	"homeport-backend/interfaces/http/rest"
	"homeport-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Records      ports.RecordRepository
	Drafts       *services.DraftStore
	Linker       *services.IdentityLinker
	Orchestrator *services.ProfileOrchestrator
	Attachments  *services.AttachmentService
	Sessions     ports.Cache
	Notifier     ports.Notifier
	Metrics      *observability.Metrics
	Router       *rest.Router
}

// Shutdown flushes buffered telemetry and stops background loops
func (c *Container) Shutdown() {
	if sessions, ok := c.Sessions.(*SessionCache); ok {
		sessions.Stop()
	}
	c.Metrics.Close()
	_ = c.Logger.Sync()
}
