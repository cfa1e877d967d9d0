package conversation

import (
	"context"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// CurrentUser looks up the user the server acts on behalf of.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.GetUser(ctx, id)
}

// RegisterUser creates a user. Status defaults to offline.
func (s *Service) RegisterUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return nil, errors.WithMessagef(err, "register %q", in.Username)
	}
	jww.INFO.Printf("Registered user %d (%s)", user.ID, user.Username)
	return user, nil
}

// SendMessage stores a new message from senderID. The message is created
// unread and already delivered; messageType defaults to text.
func (s *Service) SendMessage(ctx context.Context, senderID int64, in models.InsertMessage) (*models.MessageWithSender, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	messageType := in.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	var imageURL *string
	if in.ImageURL != nil && *in.ImageURL != "" {
		url := *in.ImageURL
		imageURL = &url
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.store.CreateMessage(ctx, models.Message{
		SenderID:    senderID,
		ReceiverID:  in.ReceiverID,
		Content:     in.Content,
		MessageType: messageType,
		ImageURL:    imageURL,
		Timestamp:   s.now(),
		IsRead:      false,
		IsDelivered: true,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "create message")
	}

	sender, err := s.store.GetUser(ctx, senderID)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolve sender %d", senderID)
	}

	jww.DEBUG.Printf("Message %d sent from %d to %d", msg.ID, msg.SenderID, msg.ReceiverID)
	return &models.MessageWithSender{Message: *msg, Sender: *sender}, nil
}

// MarkAsRead sets isRead on a message. An unknown id is ignored.
func (s *Service) MarkAsRead(ctx context.Context, messageID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return ignoreNotFound(s.store.MarkMessageRead(ctx, messageID), "mark read", messageID)
}

// MarkAsDelivered sets isDelivered on a message. An unknown id is ignored.
//
// Messages are created delivered, so this never changes a stored message in
// practice. There is no delivery acknowledgement flow behind it yet.
func (s *Service) MarkAsDelivered(ctx context.Context, messageID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return ignoreNotFound(s.store.MarkMessageDelivered(ctx, messageID), "mark delivered", messageID)
}

// UpdateUserStatus sets the user's status and refreshes lastSeen in one
// update. An unknown user is ignored.
func (s *Service) UpdateUserStatus(ctx context.Context, userID int64, status string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.UpdateUserStatus(ctx, userID, status, s.now())
	return ignoreNotFound(err, "update status", userID)
}

func ignoreNotFound(err error, op string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		jww.DEBUG.Printf("%s: %d not found, ignoring", op, id)
		return nil
	}
	return errors.WithMessagef(err, "%s %d", op, id)
}
