package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"soulsync-backend/internal/models"
)

// Exported calendar events default to a two-hour duration
const calendarEventDuration = 2 * time.Hour

const icalTimeLayout = "20060102T150405Z"

// ICalendar renders a date as an iCalendar file suitable for Apple
// Calendar, Outlook and friends, including a one-hour display alarm.
func ICalendar(date models.Date) string {
	start := date.DateTime.UTC()
	end := start.Add(calendarEventDuration)

	title := date.Title
	if title == "" {
		title = "Date with Partner"
	}
	description := date.Notes
	if description == "" {
		description = "Scheduled date via SoulSync"
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//SoulSync//Date Planner//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"DTSTART:" + start.Format(icalTimeLayout),
		"DTEND:" + end.Format(icalTimeLayout),
		"SUMMARY:" + escapeICalText(title),
		"DESCRIPTION:" + escapeICalText(description),
		fmt.Sprintf("UID:%s@soulsync.app", date.ID),
		"DTSTAMP:" + time.Now().UTC().Format(icalTimeLayout),
		"STATUS:CONFIRMED",
		"BEGIN:VALARM",
		"TRIGGER:-PT1H",
		"ACTION:DISPLAY",
		"DESCRIPTION:Date reminder",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// GoogleCalendarLink builds a Google Calendar add-event URL for a date
func GoogleCalendarLink(date models.Date) string {
	start := date.DateTime.UTC()
	end := start.Add(calendarEventDuration)

	title := date.Title
	if title == "" {
		title = "Date with Partner"
	}
	details := date.Notes
	if details == "" {
		details = "Scheduled date via SoulSync"
	}

	params := url.Values{}
	params.Set("text", title)
	params.Set("dates", start.Format(icalTimeLayout)+"/"+end.Format(icalTimeLayout))
	params.Set("details", details)
	params.Set("reminder", "60")

	return "https://calendar.google.com/calendar/render?action=TEMPLATE&" + params.Encode()
}

func escapeICalText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
