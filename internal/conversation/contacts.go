package conversation

import (
	"context"
	"sort"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

var (
	// ErrSelfContact is returned when a user tries to add themselves.
	ErrSelfContact = errors.New("you cannot add yourself as a contact")

	// ErrContactExists is returned when the pair is already in the list.
	ErrContactExists = errors.New("contact already added")
)

// ListContacts returns the owner's contacts joined with the referenced user,
// the latest message of each pair and the number of unread messages from
// each contact, most recent conversation first.
//
// Users, unread counts and last messages are each fetched with one batched
// store call. Those calls are not a snapshot: a concurrent write may show up
// in one and not another. Contacts whose user no longer resolves are
// dropped.
func (s *Service) ListContacts(ctx context.Context, ownerID int64) ([]models.ContactWithUser, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, errors.WithMessagef(err, "list contacts of user %d", ownerID)
	}
	if len(contacts) == 0 {
		return []models.ContactWithUser{}, nil
	}

	contactIDs := make([]int64, 0, len(contacts))
	for _, c := range contacts {
		contactIDs = append(contactIDs, c.ContactID)
	}

	users, err := s.store.GetUsers(ctx, contactIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "resolve contact users")
	}
	userByID := make(map[int64]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	unread, err := s.store.UnreadCounts(ctx, ownerID, contactIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "count unread messages")
	}

	last, err := s.store.LastMessages(ctx, ownerID, contactIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "find last messages")
	}

	result := make([]models.ContactWithUser, 0, len(contacts))
	for _, c := range contacts {
		user, ok := userByID[c.ContactID]
		if !ok {
			jww.DEBUG.Printf("Skipping contact %d of user %d: user %d not found",
				c.ID, ownerID, c.ContactID)
			continue
		}

		item := models.ContactWithUser{
			Contact:     c,
			User:        user,
			UnreadCount: unread[c.ContactID],
		}
		if m, ok := last[c.ContactID]; ok {
			m := m
			item.LastMessage = &m
		}
		result = append(result, item)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return lastActivity(result[i]).After(lastActivity(result[j]))
	})
	return result, nil
}

// lastActivity is the zero time for contacts without messages, which sorts
// them after every contact that has one.
func lastActivity(c models.ContactWithUser) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.Timestamp
}

// AddContact adds the user called req.Username to the owner's contacts.
func (s *Service) AddContact(ctx context.Context, ownerID int64, req models.AddContactRequest) (*models.ContactWithUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.WithMessagef(err, "find user %q", req.Username)
	}
	if user.ID == ownerID {
		return nil, ErrSelfContact
	}

	_, err = s.store.GetContactByPair(ctx, ownerID, user.ID)
	switch {
	case err == nil:
		return nil, ErrContactExists
	case !errors.Is(err, store.ErrNotFound):
		return nil, errors.WithMessage(err, "check existing contact")
	}

	contact, err := s.store.CreateContact(ctx, models.InsertContact{
		UserID:    ownerID,
		ContactID: user.ID,
		Nickname:  req.Nickname,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "create contact")
	}

	jww.INFO.Printf("User %d added contact %d (%s)", ownerID, user.ID, user.Username)
	return &models.ContactWithUser{Contact: *contact, User: *user}, nil
}
