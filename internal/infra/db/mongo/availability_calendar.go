package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "wanderstay/internal/domain/availability"
	domainproperty "wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

// AvailabilityCalendar stores one document per blocked date. Dates absent
// from the collection are available, so a window query materializes the
// full day list from the blocked subset.
type AvailabilityCalendar struct {
	col *mongo.Collection
}

func NewAvailabilityCalendar(db *mongo.Database) *AvailabilityCalendar {
	col := db.Collection("blocked_dates")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &AvailabilityCalendar{col: col}
}

type blockedDateDocument struct {
	PropertyID string `bson:"property_id"`
	Date       int64  `bson:"date"`
	Reference  string `bson:"reference"`
}

func (c *AvailabilityCalendar) FetchWindow(ctx context.Context, id domainproperty.PropertyID, from, to time.Time) ([]domainavailability.DayAvailability, error) {
	start := daterange.Midnight(from)
	end := daterange.Midnight(to)
	filter := bson.M{
		"property_id": string(id),
		"date":        bson.M{"$gte": start.UnixMilli(), "$lte": end.UnixMilli()},
	}
	cur, err := c.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	blocked := make(map[int64]struct{})
	for cur.Next(ctx) {
		var doc blockedDateDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		blocked[doc.Date] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	var days []domainavailability.DayAvailability
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		status := domainavailability.StatusAvailable
		if _, ok := blocked[d.UnixMilli()]; ok {
			status = domainavailability.StatusBlocked
		}
		days = append(days, domainavailability.DayAvailability{Date: d, Status: status})
	}
	return days, nil
}

func (c *AvailabilityCalendar) BlockRange(ctx context.Context, id domainproperty.PropertyID, r daterange.DateRange, reference string) error {
	stay := r.StayDates()
	if len(stay) == 0 {
		return nil
	}
	docs := make([]any, 0, len(stay))
	for _, d := range stay {
		docs = append(docs, blockedDateDocument{
			PropertyID: string(id),
			Date:       d.UnixMilli(),
			Reference:  reference,
		})
	}
	// Unordered so a duplicate date (already blocked by another
	// reference) does not abort the remaining inserts.
	opts := options.InsertMany().SetOrdered(false)
	_, err := c.col.InsertMany(ctx, docs, opts)
	if err != nil && isOnlyDuplicates(err) {
		return nil
	}
	return err
}

func isOnlyDuplicates(err error) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	var bulk mongo.BulkWriteException
	if errors.As(err, &bulk) {
		for _, we := range bulk.WriteErrors {
			if we.Code != 11000 {
				return false
			}
		}
	}
	return true
}

var _ domainavailability.Calendar = (*AvailabilityCalendar)(nil)
