package notification

import "go-approvals/internal/common/models"

type TemplateID string

const (
	TemplateApprovalRequested TemplateID = "approval_requested"
	TemplateApprovalReminder  TemplateID = "approval_reminder"
	TemplateApprovalEscalated TemplateID = "approval_escalated"
	TemplateApprovalApproved  TemplateID = "approval_approved"
	TemplateApprovalRejected  TemplateID = "approval_rejected"
)

// Message is one notification about a task, rendered per recipient.
type Message struct {
	Template   TemplateID
	Params     map[string]string
	Recipients []models.User
}

// TaskParams returns the placeholders every template may use.
func TaskParams(task *models.ApprovalTask) map[string]string {
	return map[string]string{
		"task_id":     task.ID,
		"title":       task.Title,
		"description": task.Description,
		"urgency":     string(task.Urgency),
		"status":      string(task.Status),
	}
}

// NewMessage builds a message for task addressed to recipients. extra
// entries override the task placeholders.
func NewMessage(template TemplateID, task *models.ApprovalTask, extra map[string]string, recipients ...models.User) Message {
	params := TaskParams(task)
	for k, v := range extra {
		params[k] = v
	}
	return Message{Template: template, Params: params, Recipients: recipients}
}
