package models

// Contact is a directed relationship: UserID has ContactID in their list.
type Contact struct {
	ID        int64   `json:"id" db:"id" bson:"id"`
	UserID    int64   `json:"userId" db:"user_id" bson:"userId"`
	ContactID int64   `json:"contactId" db:"contact_id" bson:"contactId"`
	Nickname  *string `json:"nickname" db:"nickname" bson:"nickname"`
}

// InsertContact is what the store needs to create a contact.
type InsertContact struct {
	UserID    int64
	ContactID int64
	Nickname  *string
}

// AddContactRequest represents the add contact request body
type AddContactRequest struct {
	Username string  `json:"username"`
	Nickname *string `json:"nickname,omitempty"`
}

// Validate checks the add contact payload.
func (r AddContactRequest) Validate() error {
	var errs ValidationErrors
	if r.Username == "" {
		errs.Add("username", "Required")
	}
	if r.Nickname != nil && len(*r.Nickname) > 64 {
		errs.Add("nickname", "Must be at most 64 characters")
	}
	return errs.OrNil()
}

// ContactWithUser is a contact joined with the referenced user, the latest
// message of the pair and the owner's unread count from that contact.
type ContactWithUser struct {
	Contact
	User        User     `json:"user"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}
