package conversation

import (
	"context"
	"sort"

	"chatapp/server/internal/models"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Thread returns the full history between userA and userB in ascending
// chronological order, each message carrying a copy of its sender. Messages
// whose sender does not resolve are left out. Thread(a, b) and Thread(b, a)
// return the same messages.
func (s *Service) Thread(ctx context.Context, userA, userB int64) ([]models.MessageWithSender, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msgs, err := s.store.ConversationMessages(ctx, userA, userB)
	if err != nil {
		return nil, errors.WithMessagef(err, "messages between %d and %d", userA, userB)
	}
	if len(msgs) == 0 {
		return []models.MessageWithSender{}, nil
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		return msgs[i].ID < msgs[j].ID
	})

	senders, err := s.store.GetUsers(ctx, []int64{userA, userB})
	if err != nil {
		return nil, errors.WithMessage(err, "resolve senders")
	}
	senderByID := make(map[int64]models.User, len(senders))
	for _, u := range senders {
		senderByID[u.ID] = u
	}

	thread := make([]models.MessageWithSender, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := senderByID[m.SenderID]
		if !ok {
			jww.DEBUG.Printf("Skipping message %d: sender %d not found", m.ID, m.SenderID)
			continue
		}
		thread = append(thread, models.MessageWithSender{Message: m, Sender: sender})
	}
	return thread, nil
}
