// Package memory is a non-persistent Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"
)

// Store keeps every record in process memory.
type Store struct {
	mu sync.RWMutex

	users    map[int64]models.User
	contacts map[int64]models.Contact
	messages map[int64]models.Message

	nextUserID    int64
	nextContactID int64
	nextMessageID int64
}

var _ store.Store = (*Store)(nil)

// New creates an empty store. Identifiers start at 1 for every kind.
func New() *Store {
	return &Store{
		users:         make(map[int64]models.User),
		contacts:      make(map[int64]models.Contact),
		messages:      make(map[int64]models.Message),
		nextUserID:    1,
		nextContactID: 1,
		nextMessageID: 1,
	}
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUsers(_ context.Context, ids []int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) CreateUser(_ context.Context, in models.InsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, store.ErrConflict
		}
	}

	status := in.Status
	if status == "" {
		status = models.StatusOffline
	}
	u := models.User{
		ID:       s.nextUserID,
		Username: in.Username,
		Name:     in.Name,
		Avatar:   in.Avatar,
		Status:   status,
		LastSeen: time.Now(),
	}
	s.nextUserID++
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) UpdateUserStatus(_ context.Context, id int64, status string, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = status
	u.LastSeen = lastSeen
	s.users[id] = u
	return nil
}

func (s *Store) ListContacts(_ context.Context, ownerID int64) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var contacts []models.Contact
	for _, c := range s.contacts {
		if c.UserID == ownerID {
			contacts = append(contacts, c)
		}
	}
	// Map iteration is random; insertion order is the natural contact order.
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

func (s *Store) GetContactByPair(_ context.Context, ownerID, contactID int64) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.contacts {
		if c.UserID == ownerID && c.ContactID == contactID {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateContact(_ context.Context, in models.InsertContact) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.Contact{
		ID:        s.nextContactID,
		UserID:    in.UserID,
		ContactID: in.ContactID,
		Nickname:  in.Nickname,
	}
	s.nextContactID++
	s.contacts[c.ID] = c
	return &c, nil
}

func (s *Store) UnreadCounts(_ context.Context, ownerID int64, senderIDs []int64) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	senders := make(map[int64]bool, len(senderIDs))
	for _, id := range senderIDs {
		senders[id] = true
	}

	counts := make(map[int64]int)
	for _, m := range s.messages {
		if m.ReceiverID == ownerID && !m.IsRead && senders[m.SenderID] {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

func (s *Store) LastMessages(_ context.Context, ownerID int64, contactIDs []int64) (map[int64]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(contactIDs))
	for _, id := range contactIDs {
		wanted[id] = true
	}

	last := make(map[int64]models.Message)
	for _, m := range s.messages {
		var partner int64
		switch {
		case m.SenderID == ownerID:
			partner = m.ReceiverID
		case m.ReceiverID == ownerID:
			partner = m.SenderID
		default:
			continue
		}
		if !wanted[partner] {
			continue
		}
		if cur, ok := last[partner]; !ok || newer(m, cur) {
			last[partner] = m
		}
	}
	return last, nil
}

func (s *Store) ConversationMessages(_ context.Context, a, b int64) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []models.Message
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return newer(msgs[j], msgs[i]) })
	return msgs, nil
}

func (s *Store) GetMessage(_ context.Context, id int64) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) CreateMessage(_ context.Context, msg models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextMessageID
	s.nextMessageID++
	s.messages[msg.ID] = msg
	return &msg, nil
}

func (s *Store) MarkMessageRead(_ context.Context, id int64) error {
	return s.updateMessage(id, func(m *models.Message) { m.IsRead = true })
}

func (s *Store) MarkMessageDelivered(_ context.Context, id int64) error {
	return s.updateMessage(id, func(m *models.Message) { m.IsDelivered = true })
}

func (s *Store) updateMessage(id int64, apply func(*models.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	apply(&m)
	s.messages[id] = m
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

// newer orders messages by timestamp, then by id.
func newer(a, b models.Message) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
