// Package audit records who changed what. Every successful mutation emits
// one event; publishing never blocks or fails the mutation path.
package audit

import (
	"context"
	"log/slog"
	"time"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

// Action names follow "<entity>.<verb>".
const (
	ActionAccountCreated     = "account.created"
	ActionAccountDeactivated = "account.deactivated"
	ActionOwnerCreated       = "owner.created"
	ActionOwnerUpdated       = "owner.updated"
	ActionOwnerDeleted       = "owner.deleted"
	ActionPropertyCreated    = "property.created"
	ActionPropertyUpdated    = "property.updated"
	ActionPropertyDeleted    = "property.deleted"
	ActionOwnershipCreated   = "ownership.created"
	ActionOwnershipUpdated   = "ownership.updated"
	ActionOwnershipClosed    = "ownership.closed"
	ActionOwnershipDeleted   = "ownership.deleted"
)

// Event is a single audit record.
type Event struct {
	Action    string       `json:"action"`
	AccountID id.AccountID `json:"account_id"`
	Subject   string       `json:"subject"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// LogPublisher writes audit events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) {
	p.logger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"account_id", event.AccountID,
		"subject", event.Subject,
		"request_id", event.RequestID,
	)
}

// Multi fans an event out to several publishers.
type Multi []Publisher

func (m Multi) Emit(ctx context.Context, event Event) {
	for _, p := range m {
		p.Emit(ctx, event)
	}
}

// Nop discards events; used when auditing is disabled in tests.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
