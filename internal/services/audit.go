package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/ngo-backend/internal/models"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

type Auditor interface {
	Record(entityType, entityID, action string, details map[string]any)
}

type submitter interface {
	Submit(f func()) bool
}

// AuditRecorder writes audit logs on the worker pool so a slow insert never
// holds up a response. When the pool refuses the job the write happens
// inline.
type AuditRecorder struct {
	logs repo.AuditLogs
	wp   submitter
	log  *slog.Logger
}

func NewAuditRecorder(logs repo.AuditLogs, wp submitter, log *slog.Logger) *AuditRecorder {
	return &AuditRecorder{logs: logs, wp: wp, log: log}
}

func (a *AuditRecorder) Record(entityType, entityID, action string, details map[string]any) {
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logs.Create(ctx, entry); err != nil {
			a.log.Error("audit log write", "entity", entityType, "id", entityID, "action", action, "err", err)
		}
	}
	if a.wp == nil || !a.wp.Submit(write) {
		write()
	}
}
