package notify

import (
	"fmt"

	"soulsync-backend/internal/models"
)

// EventKind identifies which notification to send for a date
type EventKind string

const (
	KindRequest  EventKind = "request"
	KindAccepted EventKind = "accepted"
	KindDeclined EventKind = "declined"
	KindCreated  EventKind = "created"
	KindReminder EventKind = "reminder"
)

// Deep-link target carried in the notification payload
const deepLink = "/"

// formatDateTime renders a date time the way notifications show it,
// e.g. "Sun, Jun 1, 07:00 PM"
func formatDateTime(date models.Date) string {
	return date.DateTime.Format("Mon, Jan 2, 03:04 PM")
}

// pushContent builds the push title/body pair for an event kind
func pushContent(kind EventKind, date models.Date) (title, body string) {
	switch kind {
	case KindRequest:
		title = fmt.Sprintf("📬 Date Request from %s", date.CreatedByName)
		body = fmt.Sprintf("%s • %s", date.Title, formatDateTime(date))
	case KindAccepted:
		title = "✅ Date Request Accepted!"
		body = fmt.Sprintf("%s is confirmed for %s", date.Title, formatDateTime(date))
	case KindDeclined:
		title = "Date Request Update"
		body = fmt.Sprintf("Your request for %q couldn't be accepted", date.Title)
	case KindCreated:
		title = "💕 New Date Scheduled"
		body = fmt.Sprintf("%s • %s", date.Title, formatDateTime(date))
	case KindReminder:
		title = "⏰ Date in 1 Hour!"
		body = fmt.Sprintf("%s is happening soon", date.Title)
	}
	return title, body
}

// emailContent builds the subject/plaintext/HTML triple for an event kind
func emailContent(kind EventKind, date models.Date, recipientName string) (subject, text, html string) {
	title, body := pushContent(kind, date)
	subject = title

	text = fmt.Sprintf("Hi %s,\n\n%s\n\nOpen SoulSync to see the details.\n", recipientName, body)
	html = fmt.Sprintf(
		`<p>Hi %s,</p><p><strong>%s</strong></p><p>%s</p><p><a href="%s">Open SoulSync</a> to see the details.</p>`,
		recipientName, title, body, deepLink,
	)
	return subject, text, html
}
