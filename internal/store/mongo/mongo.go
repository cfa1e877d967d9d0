// Package mongo is the Store backed by a MongoDB document database.
package mongo

import (
	"context"
	"time"

	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	contactsCollection = "contacts"
	messagesCollection = "messages"
	countersCollection = "counters"
)

// Store implements store.Store on MongoDB. Integer identifiers come from a
// counters collection advanced with an atomic $inc.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect opens the client, pings the deployment and creates indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI is not set")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(5 * time.Second)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(store.Unavailable(err), "failed to ping MongoDB")
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.Migrate(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	jww.INFO.Printf("Connected to MongoDB database %s", database)
	return s, nil
}

// Migrate creates the indexes the queries below rely on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		contactsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "contactId", Value: 1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "isRead", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(store.Unavailable(err), "failed to create indexes for %s", name)
		}
	}
	return nil
}

func (s *Store) users() *mongo.Collection    { return s.db.Collection(usersCollection) }
func (s *Store) contacts() *mongo.Collection { return s.db.Collection(contactsCollection) }
func (s *Store) messages() *mongo.Collection { return s.db.Collection(messagesCollection) }

// nextID advances the counter of one collection and returns the new value.
func (s *Store) nextID(ctx context.Context, collection string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, errors.Wrapf(store.Unavailable(err), "next %s id", collection)
	}
	return doc.Seq, nil
}

func lookupErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return errors.Wrapf(store.Unavailable(err), format, args...)
}

func pairFilter(a, b int64) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"senderId": a, "receiverId": b},
		bson.M{"senderId": b, "receiverId": a},
	}}
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"id": id}).Decode(&u); err != nil {
		return nil, lookupErr(err, "get user %d", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, lookupErr(err, "get user %q", username)
	}
	return &u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := s.users().Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "get users")
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "decode users")
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	id, err := s.nextID(ctx, usersCollection)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusOffline
	}
	u := models.User{
		ID:       id,
		Username: in.Username,
		Name:     in.Name,
		Avatar:   in.Avatar,
		Status:   status,
		LastSeen: time.Now(),
	}
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrConflict
		}
		return nil, errors.Wrap(store.Unavailable(err), "create user")
	}
	return &u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(store.Unavailable(err), "count users")
	}
	return n, nil
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int64, status string, lastSeen time.Time) error {
	res, err := s.users().UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status, "lastSeen": lastSeen}},
	)
	if err != nil {
		return errors.Wrapf(store.Unavailable(err), "update status of user %d", id)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error) {
	cur, err := s.contacts().Find(ctx, bson.M{"userId": ownerID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "list contacts of %d", ownerID)
	}
	var contacts []models.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "decode contacts")
	}
	return contacts, nil
}

func (s *Store) GetContactByPair(ctx context.Context, ownerID, contactID int64) (*models.Contact, error) {
	var c models.Contact
	err := s.contacts().FindOne(ctx,
		bson.M{"userId": ownerID, "contactId": contactID},
		options.FindOne().SetSort(bson.D{{Key: "id", Value: 1}}),
	).Decode(&c)
	if err != nil {
		return nil, lookupErr(err, "get contact %d of %d", contactID, ownerID)
	}
	return &c, nil
}

func (s *Store) CreateContact(ctx context.Context, in models.InsertContact) (*models.Contact, error) {
	id, err := s.nextID(ctx, contactsCollection)
	if err != nil {
		return nil, err
	}

	c := models.Contact{
		ID:        id,
		UserID:    in.UserID,
		ContactID: in.ContactID,
		Nickname:  in.Nickname,
	}
	if _, err := s.contacts().InsertOne(ctx, c); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "create contact")
	}
	return &c, nil
}

func (s *Store) UnreadCounts(ctx context.Context, ownerID int64, senderIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	if len(senderIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"receiverId": ownerID,
			"isRead":     false,
			"senderId":   bson.M{"$in": senderIDs},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$senderId",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.messages().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "count unread")
	}

	var groups []struct {
		SenderID int64 `bson:"_id"`
		Count    int   `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "decode unread counts")
	}
	for _, g := range groups {
		counts[g.SenderID] = g.Count
	}
	return counts, nil
}

func (s *Store) LastMessages(ctx context.Context, ownerID int64, contactIDs []int64) (map[int64]models.Message, error) {
	last := make(map[int64]models.Message)
	if len(contactIDs) == 0 {
		return last, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"senderId": ownerID, "receiverId": bson.M{"$in": contactIDs}},
			bson.M{"receiverId": ownerID, "senderId": bson.M{"$in": contactIDs}},
		}}}},
		{{Key: "$addFields", Value: bson.M{
			"partner": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$senderId", ownerID}}, "$receiverId", "$senderId",
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$partner",
			"doc": bson.M{"$first": "$$ROOT"},
		}}},
	}
	cur, err := s.messages().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "last messages")
	}

	var groups []struct {
		ContactID int64          `bson:"_id"`
		Message   models.Message `bson:"doc"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "decode last messages")
	}
	for _, g := range groups {
		last[g.ContactID] = g.Message
	}
	return last, nil
}

func (s *Store) ConversationMessages(ctx context.Context, a, b int64) ([]models.Message, error) {
	cur, err := s.messages().Find(ctx, pairFilter(a, b),
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(store.Unavailable(err), "messages between %d and %d", a, b)
	}
	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "decode messages")
	}
	return msgs, nil
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	var m models.Message
	if err := s.messages().FindOne(ctx, bson.M{"id": id}).Decode(&m); err != nil {
		return nil, lookupErr(err, "get message %d", id)
	}
	return &m, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	id, err := s.nextID(ctx, messagesCollection)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	// BSON dates carry millisecond precision; truncate so the returned value
	// matches what a later read decodes.
	msg.Timestamp = msg.Timestamp.Truncate(time.Millisecond)

	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(store.Unavailable(err), "create message")
	}
	return &msg, nil
}

func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	return s.setMessageFlag(ctx, id, "isRead")
}

func (s *Store) MarkMessageDelivered(ctx context.Context, id int64) error {
	return s.setMessageFlag(ctx, id, "isDelivered")
}

func (s *Store) setMessageFlag(ctx context.Context, id int64, field string) error {
	res, err := s.messages().UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{field: true}},
	)
	if err != nil {
		return errors.Wrapf(store.Unavailable(err), "set %s on message %d", field, id)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return store.Unavailable(err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
