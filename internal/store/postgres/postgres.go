// Package postgres is the Store backed by PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

const userColumns = `id, username, name, avatar, status, last_seen`

const messageColumns = `id, sender_id, receiver_id, content, message_type, image_url, "timestamp", is_read, is_delivered`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		avatar TEXT,
		status TEXT NOT NULL DEFAULT 'offline',
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		contact_id BIGINT NOT NULL,
		nickname TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS contacts_user_id_idx ON contacts (user_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		image_url TEXT,
		"timestamp" TIMESTAMPTZ NOT NULL DEFAULT now(),
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		is_delivered BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS messages_pair_idx ON messages (sender_id, receiver_id, "timestamp")`,
	`CREATE INDEX IF NOT EXISTS messages_unread_idx ON messages (receiver_id, is_read)`,
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect creates the pool, pings the server and applies the schema.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(store.Unavailable(err), "failed to ping database")
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	jww.INFO.Printf("Database connected successfully using PGX")
	return s, nil
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(store.Unavailable(err), "failed to migrate schema")
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Avatar, &u.Status, &u.LastSeen)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType,
		&m.ImageURL, &m.Timestamp, &m.IsRead, &m.IsDelivered)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// lookupErr maps pgx.ErrNoRows to store.ErrNotFound and everything else to
// store.ErrUnavailable.
func lookupErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return errors.Wrapf(store.Unavailable(err), format, args...)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, lookupErr(err, "get user %d", id)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, lookupErr(err, "get user %q", username)
	}
	return u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "get users")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(store.Unavailable(err), "scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "get users")
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	status := in.Status
	if status == "" {
		status = models.StatusOffline
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, name, avatar, status, last_seen)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.Username, in.Name, in.Avatar, status, time.Now()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, store.ErrConflict
		}
		return nil, errors.Wrap(store.Unavailable(err), "create user")
	}
	return u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, errors.Wrap(store.Unavailable(err), "count users")
	}
	return n, nil
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int64, status string, lastSeen time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET status = $1, last_seen = $2 WHERE id = $3`, status, lastSeen, id)
	if err != nil {
		return errors.Wrapf(store.Unavailable(err), "update status of user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, contact_id, nickname
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "list contacts of %d", ownerID)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContactID, &c.Nickname); err != nil {
			return nil, errors.Wrap(store.Unavailable(err), "scan contact")
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "list contacts of %d", ownerID)
	}
	return contacts, nil
}

func (s *Store) GetContactByPair(ctx context.Context, ownerID, contactID int64) (*models.Contact, error) {
	var c models.Contact
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, contact_id, nickname
		FROM contacts
		WHERE user_id = $1 AND contact_id = $2
		ORDER BY id
		LIMIT 1
	`, ownerID, contactID).Scan(&c.ID, &c.UserID, &c.ContactID, &c.Nickname)
	if err != nil {
		return nil, lookupErr(err, "get contact %d of %d", contactID, ownerID)
	}
	return &c, nil
}

func (s *Store) CreateContact(ctx context.Context, in models.InsertContact) (*models.Contact, error) {
	var c models.Contact
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, contact_id, nickname)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, contact_id, nickname
	`, in.UserID, in.ContactID, in.Nickname).Scan(&c.ID, &c.UserID, &c.ContactID, &c.Nickname)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "create contact")
	}
	return &c, nil
}

func (s *Store) UnreadCounts(ctx context.Context, ownerID int64, senderIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	if len(senderIDs) == 0 {
		return counts, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND is_read = FALSE AND sender_id = ANY($2)
		GROUP BY sender_id
	`, ownerID, senderIDs)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "count unread")
	}
	defer rows.Close()

	for rows.Next() {
		var sender int64
		var n int
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, errors.Wrap(store.Unavailable(err), "scan unread count")
		}
		counts[sender] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "count unread")
	}
	return counts, nil
}

func (s *Store) LastMessages(ctx context.Context, ownerID int64, contactIDs []int64) (map[int64]models.Message, error) {
	last := make(map[int64]models.Message)
	if len(contactIDs) == 0 {
		return last, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.contact_id, m.id, m.sender_id, m.receiver_id, m.content, m.message_type,
			m.image_url, m."timestamp", m.is_read, m.is_delivered
		FROM unnest($2::bigint[]) AS c(contact_id)
		JOIN LATERAL (
			SELECT `+messageColumns+`
			FROM messages
			WHERE (sender_id = $1 AND receiver_id = c.contact_id)
			   OR (sender_id = c.contact_id AND receiver_id = $1)
			ORDER BY "timestamp" DESC, id DESC
			LIMIT 1
		) m ON TRUE
	`, ownerID, contactIDs)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "last messages")
	}
	defer rows.Close()

	for rows.Next() {
		var contactID int64
		var m models.Message
		err := rows.Scan(&contactID, &m.ID, &m.SenderID, &m.ReceiverID, &m.Content,
			&m.MessageType, &m.ImageURL, &m.Timestamp, &m.IsRead, &m.IsDelivered)
		if err != nil {
			return nil, errors.Wrap(store.Unavailable(err), "scan last message")
		}
		last[contactID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "last messages")
	}
	return last, nil
}

func (s *Store) ConversationMessages(ctx context.Context, a, b int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY "timestamp" ASC, id ASC
	`, a, b)
	if err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "messages between %d and %d", a, b)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, errors.Wrap(store.Unavailable(err), "scan message")
		}
		msgs = append(msgs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "messages between %d and %d", a, b)
	}
	return msgs, nil
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		return nil, lookupErr(err, "get message %d", id)
	}
	return m, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content, message_type, image_url, "timestamp", is_read, is_delivered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+messageColumns,
		msg.SenderID, msg.ReceiverID, msg.Content, msg.MessageType, msg.ImageURL,
		msg.Timestamp, msg.IsRead, msg.IsDelivered))
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "create message")
	}
	return m, nil
}

func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	return s.setMessageFlag(ctx, id, "is_read")
}

func (s *Store) MarkMessageDelivered(ctx context.Context, id int64) error {
	return s.setMessageFlag(ctx, id, "is_delivered")
}

// setMessageFlag sets a boolean column to true. column is never user input.
func (s *Store) setMessageFlag(ctx context.Context, id int64, column string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE messages SET `+column+` = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(store.Unavailable(err), "set %s on message %d", column, id)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return store.Unavailable(err)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}
