package approval

import (
	"time"

	"go-approvals/internal/common/models"
)

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	ApproverID  string `json:"approver_id"`
}

type DecisionInput struct {
	Comment string `json:"comment"`
}

type SnoozeInput struct {
	Hours int `json:"hours"`
}

type SLABucket string

const (
	SLAGreen  SLABucket = "green"
	SLAYellow SLABucket = "yellow"
	SLARed    SLABucket = "red"
)

const (
	slaYellowAfter = 24 * time.Hour
	slaRedAfter    = 48 * time.Hour
)

// BucketFor classifies a pending task by time since creation. Display only.
func BucketFor(task *models.ApprovalTask, now time.Time) SLABucket {
	age := now.Sub(task.CreatedAt)
	switch {
	case age < slaYellowAfter:
		return SLAGreen
	case age < slaRedAfter:
		return SLAYellow
	}
	return SLARed
}

type Dashboard struct {
	Assigned []models.ApprovalTask `json:"assigned"`
	Created  []models.ApprovalTask `json:"created"`
	SLA      map[SLABucket][]string `json:"sla"`
}
