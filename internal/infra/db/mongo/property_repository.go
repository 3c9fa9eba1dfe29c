package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "wanderstay/internal/domain/property"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	return err
}

type propertyDocument struct {
	ID               string `bson:"_id"`
	Host             string `bson:"host"`
	Title            string `bson:"title"`
	Description      string `bson:"description"`
	City             string `bson:"city"`
	Country          string `bson:"country"`
	GuestsLimit      int    `bson:"guests_limit"`
	NightlyRateCents int64  `bson:"nightly_rate_cents"`
	MinStayNights    *int   `bson:"min_stay_nights,omitempty"`
	MaxStayNights    *int   `bson:"max_stay_nights,omitempty"`
	LeadTimeDays     *int   `bson:"lead_time_days,omitempty"`
	BufferDays       *int   `bson:"buffer_days,omitempty"`
	State            string `bson:"state"`
	CreatedAt        int64  `bson:"created_at"`
	UpdatedAt        int64  `bson:"updated_at"`
	Version          int64  `bson:"version"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:               string(p.ID),
		Host:             string(p.Host),
		Title:            p.Title,
		Description:      p.Description,
		City:             p.City,
		Country:          p.Country,
		GuestsLimit:      p.GuestsLimit,
		NightlyRateCents: p.NightlyRateCents,
		MinStayNights:    p.Rules.MinStayNights,
		MaxStayNights:    p.Rules.MaxStayNights,
		LeadTimeDays:     p.Rules.LeadTimeDays,
		BufferDays:       p.Rules.BufferDays,
		State:            string(p.State),
		CreatedAt:        p.CreatedAt.UnixMilli(),
		UpdatedAt:        p.UpdatedAt.UnixMilli(),
		Version:          p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:               domainproperty.PropertyID(d.ID),
		Host:             domainproperty.HostID(d.Host),
		Title:            d.Title,
		Description:      d.Description,
		City:             d.City,
		Country:          d.Country,
		GuestsLimit:      d.GuestsLimit,
		NightlyRateCents: d.NightlyRateCents,
		Rules: domainproperty.BookingRules{
			MinStayNights: d.MinStayNights,
			MaxStayNights: d.MaxStayNights,
			LeadTimeDays:  d.LeadTimeDays,
			BufferDays:    d.BufferDays,
		},
		State:     domainproperty.PropertyState(d.State),
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt).UTC(),
		Version:   d.Version,
	}
}
