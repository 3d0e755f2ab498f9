// mongodb.go - MongoDB-backed history and settings persistence

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ninjaforhire/mighty-gobbla/internal/processor"
)

const (
	historyCollection  = "history"
	settingsCollection = "settings"

	// historyLimit caps retained history entries; the oldest fall off.
	historyLimit = 200

	queryTimeout = 5 * time.Second
)

// Store wraps the MongoDB database holding history and settings.
type Store struct {
	db *mongo.Database
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, dbName string) (*Store, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{db: client.Database(dbName)}, client, nil
}

// NewStore wraps an existing database handle (used by tests).
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// HistoryEntry is one processed-document record.
type HistoryEntry struct {
	ID        string                  `bson:"entry_id" json:"id"`
	Timestamp time.Time               `bson:"timestamp" json:"timestamp"`
	Filename  string                  `bson:"filename" json:"filename"`
	Directory string                  `bson:"directory" json:"directory"`
	Details   processor.ExpenseRecord `bson:"details" json:"details"`
}

// HistoryPage is a paged slice of history entries.
type HistoryPage struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Items []HistoryEntry `json:"items"`
}

// AddHistoryEntry records a processed document, trimming the collection to
// the retention limit.
func (s *Store) AddHistoryEntry(ctx context.Context, filename, directory string, details processor.ExpenseRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if directory == "" {
		directory = "Upload"
	}
	entry := HistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Filename:  filename,
		Directory: directory,
		Details:   details,
	}

	coll := s.db.Collection(historyCollection)
	if _, err := coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	// Trim anything beyond the retention limit, oldest first.
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil || count <= historyLimit {
		return nil
	}
	cursor, err := coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"timestamp": 1}).SetLimit(count-historyLimit))
	if err != nil {
		return nil
	}
	defer cursor.Close(ctx)

	var stale []HistoryEntry
	if err := cursor.All(ctx, &stale); err != nil {
		return nil
	}
	ids := make([]string, len(stale))
	for i, e := range stale {
		ids[i] = e.ID
	}
	_, _ = coll.DeleteMany(ctx, bson.M{"entry_id": bson.M{"$in": ids}})
	return nil
}

// GetHistory returns one page of history, newest first.
func (s *Store) GetHistory(ctx context.Context, page, limit int) (HistoryPage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	coll := s.db.Collection(historyCollection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return HistoryPage{}, fmt.Errorf("counting history: %w", err)
	}

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return HistoryPage{}, fmt.Errorf("querying history: %w", err)
	}
	defer cursor.Close(ctx)

	items := []HistoryEntry{}
	if err := cursor.All(ctx, &items); err != nil {
		return HistoryPage{}, fmt.Errorf("decoding history: %w", err)
	}

	return HistoryPage{Total: total, Page: page, Limit: limit, Items: items}, nil
}

// DeleteHistoryEntry removes one entry by id, reporting whether it existed.
func (s *Store) DeleteHistoryEntry(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.Collection(historyCollection).DeleteOne(ctx, bson.M{"entry_id": id})
	if err != nil {
		return false, fmt.Errorf("deleting history entry: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// ClearHistory removes all entries and returns how many were removed.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.Collection(historyCollection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.DeletedCount, nil
}

// Settings are the user-adjustable runtime options.
type Settings struct {
	NotionEnabled bool   `bson:"notion_enabled" json:"notion_enabled"`
	NotionToken   string `bson:"notion_token" json:"notion_token,omitempty"`
	NotionDBID    string `bson:"notion_db_id" json:"notion_db_id,omitempty"`
}

// settingsKey is the fixed id of the single settings document.
const settingsKey = "settings"

// GetSettings loads the stored settings. The second return value reports
// whether any settings document has been saved yet.
func (s *Store) GetSettings(ctx context.Context) (Settings, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var settings Settings
	err := s.db.Collection(settingsCollection).
		FindOne(ctx, bson.M{"_id": settingsKey}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("loading settings: %w", err)
	}
	return settings, true, nil
}

// SaveSettings upserts the settings document.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.Collection(settingsCollection).UpdateOne(ctx,
		bson.M{"_id": settingsKey},
		bson.M{"$set": settings},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
