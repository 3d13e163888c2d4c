package notification

import (
	"fmt"
	"sort"
	"strings"
)

type Template struct {
	Subject string
	Body    string
}

var templates = map[TemplateID]Template{
	TemplateApprovalRequested: {
		Subject: "Approval requested: {{title}}",
		Body:    "Hello {{recipient}},\n\n{{requester}} asked you to approve \"{{title}}\" ({{urgency}}).\n\n{{description}}",
	},
	TemplateApprovalReminder: {
		Subject: "Reminder: \"{{title}}\" is waiting for your approval",
		Body:    "Hello {{recipient}},\n\nThe {{urgency}} request \"{{title}}\" is still pending your decision.",
	},
	TemplateApprovalEscalated: {
		Subject: "Escalated: {{title}}",
		Body:    "Hello {{recipient}},\n\n\"{{title}}\" has been pending for over {{pending_hours}} hours and was escalated to you.",
	},
	TemplateApprovalApproved: {
		Subject: "Approved: {{title}}",
		Body:    "Hello {{recipient}},\n\n{{actor}} approved \"{{title}}\".\n\nRemarks: {{remarks}}",
	},
	TemplateApprovalRejected: {
		Subject: "Rejected: {{title}}",
		Body:    "Hello {{recipient}},\n\n{{actor}} rejected \"{{title}}\".\n\nReason: {{remarks}}",
	},
}

// Render fills the template's placeholders from params.
func Render(id TemplateID, params map[string]string) (subject, body string, err error) {
	tpl, ok := templates[id]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", id)
	}
	return replacePlaceholders(tpl.Subject, params), replacePlaceholders(tpl.Body, params), nil
}

// replacePlaceholders substitutes every {{key}} in one pass, so values that
// themselves contain placeholders are left as written.
func replacePlaceholders(text string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("{{%s}}", key), params[key])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
