package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsync "wanderstay/internal/domain/calendarsync"
	domainproperty "wanderstay/internal/domain/property"
)

type CalendarSyncRepository struct {
	col *mongo.Collection
}

func NewCalendarSyncRepository(db *mongo.Database) *CalendarSyncRepository {
	col := db.Collection("calendar_feeds")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &CalendarSyncRepository{col: col}
}

type feedDocument struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property_id"`
	URL        string `bson:"url"`
	Enabled    bool   `bson:"enabled"`
	Status     string `bson:"status"`
	LastSyncAt int64  `bson:"last_sync_at"`
	LastError  string `bson:"last_error"`
	CreatedAt  int64  `bson:"created_at"`
	DeletedAt  *int64 `bson:"deleted_at,omitempty"`
}

func (r *CalendarSyncRepository) ByProperty(ctx context.Context, id domainproperty.PropertyID) ([]domainsync.Feed, error) {
	cur, err := r.col.Find(ctx, bson.M{"property_id": string(id)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var feeds []domainsync.Feed
	for cur.Next(ctx) {
		var doc feedDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		feeds = append(feeds, doc.toFeed())
	}
	return feeds, cur.Err()
}

func (r *CalendarSyncRepository) Save(ctx context.Context, feed domainsync.Feed) error {
	doc := newFeedDocument(feed)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	return err
}

// HasActive counts enabled, non-deleted feeds; called fresh on every
// admission attempt.
func (r *CalendarSyncRepository) HasActive(ctx context.Context, id domainproperty.PropertyID) (bool, error) {
	filter := bson.M{
		"property_id": string(id),
		"enabled":     true,
		"deleted_at":  bson.M{"$exists": false},
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func newFeedDocument(f domainsync.Feed) feedDocument {
	doc := feedDocument{
		ID:         string(f.ID),
		PropertyID: string(f.PropertyID),
		URL:        f.URL,
		Enabled:    f.Enabled,
		Status:     string(f.Status),
		LastSyncAt: f.LastSyncAt.UnixMilli(),
		LastError:  f.LastError,
		CreatedAt:  f.CreatedAt.UnixMilli(),
	}
	if f.DeletedAt != nil {
		ms := f.DeletedAt.UnixMilli()
		doc.DeletedAt = &ms
	}
	return doc
}

func (d feedDocument) toFeed() domainsync.Feed {
	feed := domainsync.Feed{
		ID:         domainsync.FeedID(d.ID),
		PropertyID: domainproperty.PropertyID(d.PropertyID),
		URL:        d.URL,
		Enabled:    d.Enabled,
		Status:     domainsync.SyncStatus(d.Status),
		LastSyncAt: time.UnixMilli(d.LastSyncAt).UTC(),
		LastError:  d.LastError,
		CreatedAt:  time.UnixMilli(d.CreatedAt).UTC(),
	}
	if d.DeletedAt != nil {
		t := time.UnixMilli(*d.DeletedAt).UTC()
		feed.DeletedAt = &t
	}
	return feed
}

var _ domainsync.Repository = (*CalendarSyncRepository)(nil)
