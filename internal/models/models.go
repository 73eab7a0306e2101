package models

import "time"

// Date status values
const (
	DateStatusPending   = "pending"
	DateStatusScheduled = "scheduled"
	DateStatusDeclined  = "declined"
	DateStatusCompleted = "completed"
)

// Request status values
const (
	RequestStatusPending      = "pending"
	RequestStatusAccepted     = "accepted"
	RequestStatusDeclined     = "declined"
	RequestStatusAutoApproved = "auto-approved"
)

// Couple represents two linked users sharing a couple code
type Couple struct {
	Code         string       `json:"code"`
	RecoveryCode string       `json:"recovery_code,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	Users        []CoupleUser `json:"users"`
}

// CoupleUser represents one member of a couple
type CoupleUser struct {
	CoupleCode         string     `json:"couple_code"`
	UserID             string     `json:"user_id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Timezone           string     `json:"timezone"`
	JoinedAt           time.Time  `json:"joined_at"`
	LastSeen           time.Time  `json:"last_seen"`
	PushToken          *string    `json:"push_token,omitempty"`
	PushTokenUpdatedAt *time.Time `json:"push_token_updated_at,omitempty"`
}

// UserByID returns the member with the given user ID
func (c *Couple) UserByID(userID string) (CoupleUser, bool) {
	for _, u := range c.Users {
		if u.UserID == userID {
			return u, true
		}
	}
	return CoupleUser{}, false
}

// Partner returns the member that is not the given user
func (c *Couple) Partner(userID string) (CoupleUser, bool) {
	for _, u := range c.Users {
		if u.UserID != userID {
			return u, true
		}
	}
	return CoupleUser{}, false
}

// Date represents a scheduled activity between the two linked users
type Date struct {
	ID            string     `json:"id"`
	CoupleCode    string     `json:"couple_code"`
	Title         string     `json:"title"`
	DateTime      time.Time  `json:"date_time"`
	Notes         string     `json:"notes"`
	Type          string     `json:"type"`
	CreatedBy     string     `json:"created_by"`
	CreatedByName string     `json:"created_by_name"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Status        string     `json:"status"`
	RequestStatus string     `json:"request_status"`
	AcceptedBy    *string    `json:"accepted_by,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	DeclinedBy    *string    `json:"declined_by,omitempty"`
	DeclinedAt    *time.Time `json:"declined_at,omitempty"`
	DeclineReason *string    `json:"decline_reason,omitempty"`
	ReminderSent  bool       `json:"reminder_sent"`
}

// BucketListItem represents a shared bucket list entry
type BucketListItem struct {
	ID            string     `json:"id"`
	CoupleCode    string     `json:"couple_code"`
	Title         string     `json:"title"`
	Notes         string     `json:"notes"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	CreatedBy     string     `json:"created_by"`
	CreatedByName string     `json:"created_by_name"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CompletedBy   *string    `json:"completed_by,omitempty"`
}

// MoodEntry represents a mood logged by one user for a date
type MoodEntry struct {
	ID         string    `json:"id"`
	CoupleCode string    `json:"couple_code"`
	DateID     string    `json:"date_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Mood       string    `json:"mood"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
