// Package store defines the persistence contract shared by every backend.
package store

import (
	"context"
	"errors"
	"time"

	"chatapp/server/internal/models"
)

var (
	// ErrNotFound is returned by lookups and targeted updates when the record
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable wraps connectivity and IO failures of the backend.
	ErrUnavailable = errors.New("store unavailable")

	// ErrConflict is returned when a uniqueness rule would be violated.
	ErrConflict = errors.New("record already exists")
)

// Store is implemented by the memory, postgres and mongo backends.
//
// Identifiers are assigned by the backend. Read methods never lock across
// calls, so results of separate calls may reflect different store states.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUsers resolves all ids in one round trip. Unknown ids are omitted.
	GetUsers(ctx context.Context, ids []int64) ([]models.User, error)
	CreateUser(ctx context.Context, user models.InsertUser) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserStatus(ctx context.Context, id int64, status string, lastSeen time.Time) error

	ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error)
	GetContactByPair(ctx context.Context, ownerID, contactID int64) (*models.Contact, error)
	CreateContact(ctx context.Context, contact models.InsertContact) (*models.Contact, error)

	// UnreadCounts groups unread messages sent to ownerID by sender. Senders
	// without unread messages are absent from the map.
	UnreadCounts(ctx context.Context, ownerID int64, senderIDs []int64) (map[int64]int, error)
	// LastMessages returns, per contact id, the most recent message between
	// ownerID and that contact in either direction. Equal timestamps resolve
	// to the highest message id.
	LastMessages(ctx context.Context, ownerID int64, contactIDs []int64) (map[int64]models.Message, error)
	// ConversationMessages returns every message between a and b in either
	// direction, ordered by timestamp then id.
	ConversationMessages(ctx context.Context, a, b int64) ([]models.Message, error)

	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	MarkMessageRead(ctx context.Context, id int64) error
	MarkMessageDelivered(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Unavailable marks err as a backend failure so that callers can match it
// with errors.Is(err, ErrUnavailable) while keeping the driver error.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return &unavailableError{err: err}
}

type unavailableError struct {
	err error
}

func (e *unavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.err}
}
