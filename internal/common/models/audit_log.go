package models

import "time"

type AuditAction string

const (
	AuditActionCreated   AuditAction = "CREATED"
	AuditActionReminder  AuditAction = "REMINDER"
	AuditActionApproved  AuditAction = "APPROVED"
	AuditActionRejected  AuditAction = "REJECTED"
	AuditActionSnoozed   AuditAction = "SNOOZED"
	AuditActionEscalated AuditAction = "ESCALATED"
)

// AuditLog is one immutable lifecycle event of a task. A nil PerformedBy
// marks a system-initiated entry.
type AuditLog struct {
	ID          string      `bson:"_id" json:"id"`
	TaskID      string      `bson:"task_id" json:"task_id"`
	Action      AuditAction `bson:"action" json:"action"`
	PerformedBy *string     `bson:"performed_by,omitempty" json:"performed_by,omitempty"`
	Timestamp   time.Time   `bson:"timestamp" json:"timestamp"`
	Remarks     string      `bson:"remarks" json:"remarks"`

	ActorName string `bson:"-" json:"actor_name,omitempty"`
}

// System reports whether the entry was written by the engine.
func (l *AuditLog) System() bool {
	return l.PerformedBy == nil
}
