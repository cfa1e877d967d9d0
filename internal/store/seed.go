package store

import (
	"context"
	"time"

	"chatapp/server/internal/models"

	jww "github.com/spf13/jwalterweatherman"
)

type seedUser struct {
	username string
	name     string
	avatar   string
	status   string
	lastSeen time.Duration
}

type seedMessage struct {
	from, to string
	content  string
	age      time.Duration
	isRead   bool
}

var defaultUsers = []seedUser{
	{"sarah", "Sarah Johnson", "https://randomuser.me/api/portraits/women/65.jpg", models.StatusOnline, 0},
	{"mike", "Mike Thompson", "https://randomuser.me/api/portraits/men/32.jpg", models.StatusOnline, 0},
	{"emily", "Emily Davis", "https://randomuser.me/api/portraits/women/44.jpg", models.StatusOffline, 24 * time.Hour},
	{"alex", "Alex Rodriguez", "https://randomuser.me/api/portraits/men/68.jpg", models.StatusOffline, 3 * 24 * time.Hour},
	{"lisa", "Lisa Chen", "https://randomuser.me/api/portraits/women/18.jpg", models.StatusOffline, 7 * 24 * time.Hour},
}

var defaultContacts = map[string][]string{
	"sarah": {"mike", "emily", "alex", "lisa"},
}

var defaultMessages = []seedMessage{
	{"mike", "sarah", "Hey Sarah! How's the new project coming along?", 2 * time.Minute, true},
	{"sarah", "mike", "Going great! Just finished the wireframes. Want to take a look?", time.Minute, true},
	{"mike", "sarah", "Absolutely! Can you share them in our team channel?", 0, false},
}

// Seed writes the demo users, contacts and messages into s when it holds no
// users yet. It reports whether anything was written.
func Seed(ctx context.Context, s Store, now time.Time) (bool, error) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		jww.DEBUG.Printf("Seed skipped, store already holds %d users", count)
		return false, nil
	}

	ids := make(map[string]int64, len(defaultUsers))
	for _, u := range defaultUsers {
		avatar := u.avatar
		created, err := s.CreateUser(ctx, models.InsertUser{
			Username: u.username,
			Name:     u.name,
			Avatar:   &avatar,
			Status:   u.status,
		})
		if err != nil {
			return false, err
		}
		if err := s.UpdateUserStatus(ctx, created.ID, u.status, now.Add(-u.lastSeen)); err != nil {
			return false, err
		}
		ids[u.username] = created.ID
	}

	for _, owner := range defaultUsers {
		for _, name := range defaultContacts[owner.username] {
			_, err := s.CreateContact(ctx, models.InsertContact{
				UserID:    ids[owner.username],
				ContactID: ids[name],
			})
			if err != nil {
				return false, err
			}
		}
	}

	for _, m := range defaultMessages {
		_, err := s.CreateMessage(ctx, models.Message{
			SenderID:    ids[m.from],
			ReceiverID:  ids[m.to],
			Content:     m.content,
			MessageType: models.MessageTypeText,
			Timestamp:   now.Add(-m.age),
			IsRead:      m.isRead,
			IsDelivered: true,
		})
		if err != nil {
			return false, err
		}
	}

	jww.INFO.Printf("Seeded %d users, %d messages", len(defaultUsers), len(defaultMessages))
	return true, nil
}
