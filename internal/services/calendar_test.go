package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"soulsync-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendarDate() models.Date {
	return models.Date{
		ID:         "d-1",
		CoupleCode: "SWEETHEARTS42",
		Title:      "Stargazing",
		Notes:      "Bring blankets, hot chocolate",
		DateTime:   time.Date(2026, 3, 14, 19, 30, 0, 0, time.FixedZone("CET", 3600)),
		Status:     models.DateStatusScheduled,
	}
}

func TestICalendar(t *testing.T) {
	ics := ICalendar(calendarDate())

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR"))
	assert.Contains(t, ics, "\r\n")

	// Times are rendered in UTC: 19:30 CET is 18:30 UTC, plus the
	// two-hour default duration
	assert.Contains(t, ics, "DTSTART:20260314T183000Z")
	assert.Contains(t, ics, "DTEND:20260314T203000Z")

	assert.Contains(t, ics, "SUMMARY:Stargazing")
	assert.Contains(t, ics, "UID:d-1@soulsync.app")

	// One-hour display alarm
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-PT1H")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestICalendarEscapesText(t *testing.T) {
	date := calendarDate()
	date.Title = "Dinner; pasta, wine"
	date.Notes = "line one\nline two"

	ics := ICalendar(date)
	assert.Contains(t, ics, `SUMMARY:Dinner\; pasta\, wine`)
	assert.Contains(t, ics, `DESCRIPTION:line one\nline two`)
}

func TestICalendarDefaults(t *testing.T) {
	date := calendarDate()
	date.Title = ""
	date.Notes = ""

	ics := ICalendar(date)
	assert.Contains(t, ics, "SUMMARY:Date with Partner")
	assert.Contains(t, ics, "DESCRIPTION:Scheduled date via SoulSync")
}

func TestGoogleCalendarLink(t *testing.T) {
	link := GoogleCalendarLink(calendarDate())

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", parsed.Host)
	assert.Equal(t, "/calendar/render", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Stargazing", q.Get("text"))
	assert.Equal(t, "20260314T183000Z/20260314T203000Z", q.Get("dates"))
	assert.Equal(t, "60", q.Get("reminder"))
}
