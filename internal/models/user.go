package models

import "time"

// User statuses the client knows how to render. Any other string is kept
// as a free-text status.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents a user in the system
type User struct {
	ID       int64     `json:"id" db:"id" bson:"id"`
	Username string    `json:"username" db:"username" bson:"username"`
	Name     string    `json:"name" db:"name" bson:"name"`
	Avatar   *string   `json:"avatar" db:"avatar" bson:"avatar"`
	Status   string    `json:"status" db:"status" bson:"status"`
	LastSeen time.Time `json:"lastSeen" db:"last_seen" bson:"lastSeen"`
}

// InsertUser is the registration payload. The store assigns ID and LastSeen.
type InsertUser struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar,omitempty"`
	Status   string  `json:"status,omitempty"`
}

// Validate checks the registration payload.
func (u InsertUser) Validate() error {
	var errs ValidationErrors
	if u.Username == "" {
		errs.Add("username", "Required")
	} else if !ValidUsername(u.Username) {
		errs.Add("username", "Must be 2-32 characters of letters, digits, '.', '_' or '-'")
	}
	if u.Name == "" {
		errs.Add("name", "Required")
	}
	return errs.OrNil()
}

// ValidUsername reports whether s is an acceptable username.
func ValidUsername(s string) bool {
	if len(s) < 2 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
