package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"
	"chatapp/server/internal/store/memory"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fixture wraps a memory store with helpers that insert records directly.
type fixture struct {
	t     *testing.T
	store *memory.Store
	svc   *Service
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{t: t, store: memory.New(), clock: baseTime}
	f.svc = New(f.store, WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}))
	return f
}

func (f *fixture) user(username string) int64 {
	u, err := f.store.CreateUser(context.Background(), models.InsertUser{Username: username, Name: username})
	require.NoError(f.t, err)
	return u.ID
}

func (f *fixture) contact(owner, contact int64) {
	_, err := f.store.CreateContact(context.Background(), models.InsertContact{UserID: owner, ContactID: contact})
	require.NoError(f.t, err)
}

func (f *fixture) message(from, to int64, at time.Time, read bool) int64 {
	m, err := f.store.CreateMessage(context.Background(), models.Message{
		SenderID:    from,
		ReceiverID:  to,
		Content:     "hello",
		MessageType: models.MessageTypeText,
		Timestamp:   at,
		IsRead:      read,
		IsDelivered: true,
	})
	require.NoError(f.t, err)
	return m.ID
}

func contactIDs(list []models.ContactWithUser) []int64 {
	ids := make([]int64, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ContactID)
	}
	return ids
}

func TestListContacts_Scenario(t *testing.T) {
	f := newFixture(t)
	u1, u2, u3, u4, u5 := f.user("sarah"), f.user("mike"), f.user("emily"), f.user("alex"), f.user("lisa")
	for _, c := range []int64{u2, u3, u4, u5} {
		f.contact(u1, c)
	}
	f.message(u1, u2, baseTime.Add(-2*time.Minute), true)
	f.message(u2, u1, baseTime.Add(-time.Minute), false)
	f.message(u3, u1, baseTime.Add(-time.Hour), true)

	list, err := f.svc.ListContacts(context.Background(), u1)
	require.NoError(t, err)
	require.Equal(t, []int64{u2, u3, u4, u5}, contactIDs(list))

	require.Equal(t, 1, list[0].UnreadCount)
	require.Equal(t, 0, list[1].UnreadCount)
	require.NotNil(t, list[0].LastMessage)
	require.Equal(t, u2, list[0].LastMessage.SenderID)
	require.Nil(t, list[2].LastMessage)
	require.Nil(t, list[3].LastMessage)
	require.Equal(t, "mike", list[0].User.Username)
}

func TestListContacts_OrderByLastMessage(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	a, b, c := f.user("a"), f.user("b"), f.user("c")
	f.contact(owner, a)
	f.contact(owner, b)
	f.contact(owner, c)

	f.message(owner, a, baseTime, true)
	f.message(c, owner, baseTime.Add(time.Hour), false)
	f.message(owner, b, baseTime.Add(30*time.Minute), false)

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, []int64{c, b, a}, contactIDs(list))

	for i := 1; i < len(list); i++ {
		require.False(t, list[i].LastMessage.Timestamp.After(list[i-1].LastMessage.Timestamp))
	}
}

func TestListContacts_UnreadCountByConstruction(t *testing.T) {
	f := newFixture(t)
	owner, friend, other := f.user("owner"), f.user("friend"), f.user("other")
	f.contact(owner, friend)

	const unread, read = 4, 3
	for i := 0; i < unread; i++ {
		f.message(friend, owner, baseTime.Add(time.Duration(i)*time.Minute), false)
	}
	for i := 0; i < read; i++ {
		f.message(friend, owner, baseTime.Add(time.Duration(i)*time.Second), true)
	}
	// Outbound and third-party messages never count.
	f.message(owner, friend, baseTime, false)
	f.message(other, owner, baseTime, false)

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, unread, list[0].UnreadCount)
}

func TestListContacts_DropsOrphans(t *testing.T) {
	f := newFixture(t)
	owner, friend := f.user("owner"), f.user("friend")
	f.contact(owner, friend)
	f.contact(owner, 999)

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, []int64{friend}, contactIDs(list))
}

func TestListContacts_LastMessageTieBreak(t *testing.T) {
	f := newFixture(t)
	owner, friend := f.user("owner"), f.user("friend")
	f.contact(owner, friend)

	f.message(owner, friend, baseTime, true)
	latest := f.message(friend, owner, baseTime, true)

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, latest, list[0].LastMessage.ID)
}

func TestListContacts_Empty(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestThread_OrderAndSymmetry(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user("a"), f.user("b"), f.user("c")

	m3 := f.message(a, b, baseTime.Add(2*time.Minute), false)
	m1 := f.message(b, a, baseTime, true)
	m2 := f.message(a, b, baseTime.Add(time.Minute), true)
	f.message(a, c, baseTime, false)

	ab, err := f.svc.Thread(context.Background(), a, b)
	require.NoError(t, err)
	ba, err := f.svc.Thread(context.Background(), b, a)
	require.NoError(t, err)

	ids := func(thread []models.MessageWithSender) []int64 {
		var out []int64
		for _, m := range thread {
			out = append(out, m.ID)
		}
		return out
	}
	require.Equal(t, []int64{m1, m2, m3}, ids(ab))
	require.Equal(t, ids(ab), ids(ba))
	require.Equal(t, "b", ab[0].Sender.Username)
	require.Equal(t, "a", ab[1].Sender.Username)
}

func TestThread_SkipsUnknownSender(t *testing.T) {
	f := newFixture(t)
	a := f.user("a")
	f.message(a, 42, baseTime, false)
	f.message(42, a, baseTime.Add(time.Minute), false)

	thread, err := f.svc.Thread(context.Background(), a, 42)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Equal(t, a, thread[0].SenderID)
}

func TestSendMessage_RoundTrip(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("a"), f.user("b")

	sent, err := f.svc.SendMessage(context.Background(), a, models.InsertMessage{
		ReceiverID: b,
		Content:    "hi there",
	})
	require.NoError(t, err)
	require.Equal(t, models.MessageTypeText, sent.MessageType)
	require.Nil(t, sent.ImageURL)
	require.False(t, sent.IsRead)
	require.True(t, sent.IsDelivered)
	require.Equal(t, "a", sent.Sender.Username)

	thread, err := f.svc.Thread(context.Background(), b, a)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Equal(t, sent.ID, thread[0].ID)
	require.False(t, thread[0].IsRead)
	require.True(t, thread[0].IsDelivered)
	require.Equal(t, models.MessageTypeText, thread[0].MessageType)
}

func TestSendMessage_Image(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("a"), f.user("b")
	url := "/uploads/images/cat.png"

	sent, err := f.svc.SendMessage(context.Background(), a, models.InsertMessage{
		ReceiverID:  b,
		Content:     "look",
		MessageType: models.MessageTypeImage,
		ImageURL:    &url,
	})
	require.NoError(t, err)
	require.Equal(t, models.MessageTypeImage, sent.MessageType)
	require.Equal(t, url, *sent.ImageURL)
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.user("a")

	_, err := f.svc.SendMessage(context.Background(), a, models.InsertMessage{
		MessageType: "video",
	})
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	require.True(t, fields["receiverId"])
	require.True(t, fields["content"])
	require.True(t, fields["messageType"])

	_, err = f.svc.SendMessage(context.Background(), a, models.InsertMessage{
		ReceiverID:  a,
		Content:     "x",
		MessageType: models.MessageTypeImage,
	})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "imageUrl", verrs[0].Field)
}

func TestMarkAsRead_Idempotent(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("a"), f.user("b")
	id := f.message(a, b, baseTime, false)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.svc.MarkAsRead(context.Background(), id))
		m, err := f.store.GetMessage(context.Background(), id)
		require.NoError(t, err)
		require.True(t, m.IsRead)
	}
}

func TestMarkAsRead_UnknownMessage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.MarkAsRead(context.Background(), 12345))
}

func TestMarkAsRead_UpdatesUnreadCount(t *testing.T) {
	f := newFixture(t)
	owner, friend := f.user("owner"), f.user("friend")
	f.contact(owner, friend)
	id := f.message(friend, owner, baseTime, false)

	require.NoError(t, f.svc.MarkAsRead(context.Background(), id))

	list, err := f.svc.ListContacts(context.Background(), owner)
	require.NoError(t, err)
	require.Zero(t, list[0].UnreadCount)
}

func TestMarkAsDelivered(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("a"), f.user("b")
	sent, err := f.svc.SendMessage(context.Background(), a, models.InsertMessage{ReceiverID: b, Content: "x"})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkAsDelivered(context.Background(), sent.ID))
	require.NoError(t, f.svc.MarkAsDelivered(context.Background(), 999))

	m, err := f.store.GetMessage(context.Background(), sent.ID)
	require.NoError(t, err)
	require.True(t, m.IsDelivered)
}

func TestUpdateUserStatus(t *testing.T) {
	f := newFixture(t)
	a := f.user("a")

	require.NoError(t, f.svc.UpdateUserStatus(context.Background(), a, "In a meeting"))

	u, err := f.store.GetUser(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, "In a meeting", u.Status)
	require.True(t, u.LastSeen.After(baseTime))

	require.NoError(t, f.svc.UpdateUserStatus(context.Background(), 999, models.StatusOnline))
}

func TestAddContact(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	friend := f.user("friend")
	nick := "bestie"

	added, err := f.svc.AddContact(context.Background(), owner, models.AddContactRequest{Username: "friend", Nickname: &nick})
	require.NoError(t, err)
	require.Equal(t, friend, added.ContactID)
	require.Equal(t, "friend", added.User.Username)
	require.Equal(t, nick, *added.Nickname)

	_, err = f.svc.AddContact(context.Background(), owner, models.AddContactRequest{Username: "friend"})
	require.ErrorIs(t, err, ErrContactExists)

	_, err = f.svc.AddContact(context.Background(), owner, models.AddContactRequest{Username: "owner"})
	require.ErrorIs(t, err, ErrSelfContact)

	_, err = f.svc.AddContact(context.Background(), owner, models.AddContactRequest{Username: "nobody"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.RegisterUser(context.Background(), models.InsertUser{Username: "newbie", Name: "New Bie"})
	require.NoError(t, err)
	require.Equal(t, models.StatusOffline, u.Status)

	_, err = f.svc.RegisterUser(context.Background(), models.InsertUser{Username: "newbie", Name: "Again"})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = f.svc.RegisterUser(context.Background(), models.InsertUser{Username: "no spaces", Name: "x"})
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

// brokenStore fails every call with store.ErrUnavailable.
type brokenStore struct {
	store.Store
}

var errBroken = store.Unavailable(errors.New("connection refused"))

func (brokenStore) ListContacts(context.Context, int64) ([]models.Contact, error) {
	return nil, errBroken
}

func (brokenStore) ConversationMessages(context.Context, int64, int64) ([]models.Message, error) {
	return nil, errBroken
}

func (brokenStore) CreateMessage(context.Context, models.Message) (*models.Message, error) {
	return nil, errBroken
}

func (brokenStore) MarkMessageRead(context.Context, int64) error {
	return errBroken
}

func TestStoreUnavailable_Propagates(t *testing.T) {
	svc := New(brokenStore{})
	ctx := context.Background()

	_, err := svc.ListContacts(ctx, 1)
	require.ErrorIs(t, err, store.ErrUnavailable)

	_, err = svc.Thread(ctx, 1, 2)
	require.ErrorIs(t, err, store.ErrUnavailable)

	_, err = svc.SendMessage(ctx, 1, models.InsertMessage{ReceiverID: 2, Content: "x"})
	require.ErrorIs(t, err, store.ErrUnavailable)

	err = svc.MarkAsRead(ctx, 1)
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.False(t, errors.Is(err, store.ErrNotFound))
}
