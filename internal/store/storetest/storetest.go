// Package storetest holds the behaviour every store.Store backend must show.
package storetest

import (
	"context"
	"testing"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/stretchr/testify/require"
)

// Run exercises a backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Contacts", func(t *testing.T) { testContacts(t, newStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.CreateUser(ctx, models.InsertUser{Username: "alice", Name: "Alice"})
	require.NoError(t, err)
	b, err := s.CreateUser(ctx, models.InsertUser{Username: "bob", Name: "Bob", Status: models.StatusOnline})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, models.StatusOffline, a.Status)

	_, err = s.CreateUser(ctx, models.InsertUser{Username: "alice", Name: "Again"})
	require.ErrorIs(t, err, store.ErrConflict)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	got, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	_, err = s.GetUser(ctx, b.ID+1000)
	require.ErrorIs(t, err, store.ErrNotFound)

	users, err := s.GetUsers(ctx, []int64{a.ID, b.ID, b.ID + 1000})
	require.NoError(t, err)
	require.Len(t, users, 2)

	seen := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.UpdateUserStatus(ctx, a.ID, "busy", seen))
	got, err = s.GetUser(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "busy", got.Status)
	require.True(t, seen.Equal(got.LastSeen))

	require.ErrorIs(t, s.UpdateUserStatus(ctx, b.ID+1000, "x", seen), store.ErrNotFound)
}

func testContacts(t *testing.T, s store.Store) {
	ctx := context.Background()

	nick := "bud"
	first, err := s.CreateContact(ctx, models.InsertContact{UserID: 1, ContactID: 3, Nickname: &nick})
	require.NoError(t, err)
	_, err = s.CreateContact(ctx, models.InsertContact{UserID: 1, ContactID: 2})
	require.NoError(t, err)
	_, err = s.CreateContact(ctx, models.InsertContact{UserID: 2, ContactID: 1})
	require.NoError(t, err)

	contacts, err := s.ListContacts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, int64(3), contacts[0].ContactID)
	require.Equal(t, nick, *contacts[0].Nickname)
	require.Nil(t, contacts[1].Nickname)

	c, err := s.GetContactByPair(ctx, 1, 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, c.ID)

	_, err = s.GetContactByPair(ctx, 3, 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMessages(t *testing.T, s store.Store) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	url := "/uploads/images/x.png"

	create := func(from, to int64, ts time.Time, read bool) *models.Message {
		m, err := s.CreateMessage(ctx, models.Message{
			SenderID:    from,
			ReceiverID:  to,
			Content:     "hi",
			MessageType: models.MessageTypeImage,
			ImageURL:    &url,
			Timestamp:   ts,
			IsRead:      read,
			IsDelivered: true,
		})
		require.NoError(t, err)
		return m
	}

	m1 := create(1, 2, at.Add(time.Minute), false)
	m2 := create(2, 1, at, false)
	m3 := create(2, 1, at.Add(time.Minute), true)
	create(3, 1, at.Add(time.Hour), false)
	create(2, 3, at.Add(time.Hour), false)

	msgs, err := s.ConversationMessages(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, []int64{m2.ID, m1.ID, m3.ID}, []int64{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	require.Equal(t, url, *msgs[0].ImageURL)
	require.True(t, at.Equal(msgs[0].Timestamp))

	last, err := s.LastMessages(ctx, 1, []int64{2, 3, 4})
	require.NoError(t, err)
	require.Len(t, last, 2)
	require.Equal(t, m3.ID, last[2].ID)

	counts, err := s.UnreadCounts(ctx, 1, []int64{2, 3})
	require.NoError(t, err)
	require.Equal(t, map[int64]int{2: 1, 3: 1}, counts)

	require.NoError(t, s.MarkMessageRead(ctx, m2.ID))
	require.NoError(t, s.MarkMessageRead(ctx, m2.ID))
	got, err := s.GetMessage(ctx, m2.ID)
	require.NoError(t, err)
	require.True(t, got.IsRead)

	counts, err = s.UnreadCounts(ctx, 1, []int64{2})
	require.NoError(t, err)
	require.Empty(t, counts)

	require.NoError(t, s.MarkMessageDelivered(ctx, m1.ID))
	require.ErrorIs(t, s.MarkMessageRead(ctx, m3.ID+1000), store.ErrNotFound)
	require.ErrorIs(t, s.MarkMessageDelivered(ctx, m3.ID+1000), store.ErrNotFound)

	_, err = s.GetMessage(ctx, m3.ID+1000)
	require.ErrorIs(t, err, store.ErrNotFound)
}
