package models

import "time"

// Message types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message represents a direct message between two users
type Message struct {
	ID          int64     `json:"id" db:"id" bson:"id"`
	SenderID    int64     `json:"senderId" db:"sender_id" bson:"senderId"`
	ReceiverID  int64     `json:"receiverId" db:"receiver_id" bson:"receiverId"`
	Content     string    `json:"content" db:"content" bson:"content"`
	MessageType string    `json:"messageType" db:"message_type" bson:"messageType"`
	ImageURL    *string   `json:"imageUrl" db:"image_url" bson:"imageUrl"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp" bson:"timestamp"`
	IsRead      bool      `json:"isRead" db:"is_read" bson:"isRead"`
	IsDelivered bool      `json:"isDelivered" db:"is_delivered" bson:"isDelivered"`
}

// InsertMessage is the send message payload. SenderID is never taken from
// the request body.
type InsertMessage struct {
	ReceiverID  int64   `json:"receiverId"`
	Content     string  `json:"content"`
	MessageType string  `json:"messageType,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// Validate checks the send message payload.
func (m InsertMessage) Validate() error {
	var errs ValidationErrors
	if m.ReceiverID <= 0 {
		errs.Add("receiverId", "Must be a positive integer")
	}
	if m.Content == "" {
		errs.Add("content", "Required")
	}
	switch m.MessageType {
	case "", MessageTypeText, MessageTypeFile:
	case MessageTypeImage:
		if m.ImageURL == nil || *m.ImageURL == "" {
			errs.Add("imageUrl", "Required for image messages")
		}
	default:
		errs.Add("messageType", "Must be text, image, or file")
	}
	return errs.OrNil()
}

// MessageWithSender includes sender information
type MessageWithSender struct {
	Message
	Sender User `json:"sender"`
}
