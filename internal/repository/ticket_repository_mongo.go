package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// ticketDocument is the BSON shape of a ticket. Field names follow the
// JSON contract so documents read naturally in the mongo shell.
type ticketDocument struct {
	ID                 string    `bson:"_id"`
	Subject            string    `bson:"subject"`
	Description        string    `bson:"description"`
	Status             string    `bson:"status"`
	CreatedAt          time.Time `bson:"createdAt"`
	Resolution         *string   `bson:"resolution,omitempty"`
	CancellationReason *string   `bson:"cancellationReason,omitempty"`
}

func (d ticketDocument) toDomain() (domain.Ticket, error) {
	status, err := parseStatus(d.Status)
	if err != nil {
		return domain.Ticket{}, err
	}
	return domain.Ticket{
		ID:                 d.ID,
		Subject:            d.Subject,
		Description:        d.Description,
		Status:             status,
		CreatedAt:          d.CreatedAt.UTC(),
		Resolution:         d.Resolution,
		CancellationReason: d.CancellationReason,
	}, nil
}

type mongoTicketRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoTicketRepository instantiates the MongoDB-backed repository.
func NewMongoTicketRepository(collection *mongo.Collection, opts ...Option) TicketRepository {
	o := buildOptions(opts)
	return &mongoTicketRepository{collection: collection, now: o.now}
}

func (r *mongoTicketRepository) Create(ctx context.Context, subject, description string) (*domain.Ticket, error) {
	ticket, err := newTicket(r.now, subject, description)
	if err != nil {
		return nil, err
	}
	doc := ticketDocument{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return ticket, nil
}

func (r *mongoTicketRepository) ConditionalTransition(ctx context.Context, id string, when StatusPredicate, to domain.TicketStatus, fields TransitionFields) (*domain.Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDocument
	err := r.collection.FindOneAndUpdate(ctx,
		transitionFilter(id, when),
		bson.M{"$set": setDocument(to, fields)},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transition ticket: %w", err)
	}
	ticket, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *mongoTicketRepository) BulkTransition(ctx context.Context, match, to domain.TicketStatus, fields TransitionFields) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"status": string(match)},
		bson.M{"$set": setDocument(to, fields)},
	)
	if err != nil {
		return 0, fmt.Errorf("bulk transition tickets: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, listFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer cursor.Close(ctx)

	result := []domain.Ticket{}
	for cursor.Next(ctx) {
		var doc ticketDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		ticket, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, cursor.Err()
}

func transitionFilter(id string, when StatusPredicate) bson.M {
	status := any(string(when.Status))
	if when.Match == MatchNotEquals {
		status = bson.M{"$ne": string(when.Status)}
	}
	return bson.M{"_id": id, "status": status}
}

func setDocument(to domain.TicketStatus, fields TransitionFields) bson.M {
	set := bson.M{"status": string(to)}
	if fields.Resolution != nil {
		set["resolution"] = *fields.Resolution
	}
	if fields.CancellationReason != nil {
		set["cancellationReason"] = *fields.CancellationReason
	}
	return set
}

func listFilter(filter TicketFilter) bson.M {
	if filter.CreatedFrom == nil && filter.CreatedTo == nil {
		return bson.M{}
	}
	filter = filter.atStoredPrecision()
	created := bson.M{}
	if filter.CreatedFrom != nil {
		created["$gte"] = *filter.CreatedFrom
	}
	if filter.CreatedTo != nil {
		created["$lte"] = *filter.CreatedTo
	}
	return bson.M{"createdAt": created}
}
