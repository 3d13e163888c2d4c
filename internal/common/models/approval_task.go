package models

import (
	"strings"
	"time"
)

type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// ParseUrgency normalizes user input. An empty value means MEDIUM.
func ParseUrgency(s string) (Urgency, bool) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(s)))
	switch u {
	case "":
		return UrgencyMedium, true
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u, true
	}
	return u, false
}

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "PENDING"
	TaskStatusApproved TaskStatus = "APPROVED"
	TaskStatusRejected TaskStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusApproved || s == TaskStatusRejected
}

// ApprovalTask is a single approval request.
type ApprovalTask struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	RequesterID string     `bson:"requester_id" json:"requester_id"`
	ApproverID  string     `bson:"approver_id" json:"approver_id"`
	Urgency     Urgency    `bson:"urgency" json:"urgency"`
	Status      TaskStatus `bson:"status" json:"status"`
	SnoozeUntil *time.Time `bson:"snooze_until,omitempty" json:"snooze_until,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// SnoozedAt reports whether the task is inside its snooze window at now.
func (t *ApprovalTask) SnoozedAt(now time.Time) bool {
	return t.SnoozeUntil != nil && t.SnoozeUntil.After(now)
}
