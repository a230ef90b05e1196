package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

const collectionOrders = "orders"

// OrderRepository implements ports.OrderRepository using MongoDB. Every query
// is scoped by user_id.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type orderDocument struct {
	ID              primitive.ObjectID          `bson:"_id,omitempty"`
	UserID          string                      `bson:"user_id"`
	Items           []domain.OrderItem          `bson:"items"`
	ShippingAddress string                      `bson:"shipping_address"`
	Status          domain.OrderStatus          `bson:"status"`
	TotalAmount     float64                     `bson:"total_amount"`
	Version         int64                       `bson:"version"`
	StatusHistory   []domain.StatusHistoryEntry `bson:"status_history"`
	CreatedAt       time.Time                   `bson:"created_at"`
	UpdatedAt       time.Time                   `bson:"updated_at"`
}

func (d *orderDocument) toDomain() *domain.Order {
	history := make([]domain.StatusHistoryEntry, len(d.StatusHistory))
	for i, h := range d.StatusHistory {
		history[i] = domain.StatusHistoryEntry{Status: h.Status, Timestamp: h.Timestamp.UTC()}
	}
	return &domain.Order{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		Items:           d.Items,
		ShippingAddress: d.ShippingAddress,
		Status:          d.Status,
		TotalAmount:     d.TotalAmount,
		Version:         d.Version,
		StatusHistory:   history,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

// Create inserts a new order document and sets order.ID.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := orderDocument{
		ID:              primitive.NewObjectID(),
		UserID:          order.UserID,
		Items:           order.Items,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		Version:         order.Version,
		StatusHistory:   order.StatusHistory,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = doc.ID.Hex()
	return nil
}

// FindByID retrieves an order owned by userID.
func (r *OrderRepository) FindByID(ctx context.Context, id, userID string) (*domain.Order, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

// Update writes the mutable fields only if the stored version still equals
// expectedVersion.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order, expectedVersion int64) error {
	oid, ok := parseID(order.ID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner := bson.M{"_id": oid, "user_id": order.UserID}
	filter := bson.M{"_id": oid, "user_id": order.UserID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"status":           order.Status,
		"shipping_address": order.ShippingAddress,
		"status_history":   order.StatusHistory,
		"version":          order.Version,
		"updated_at":       order.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, owner)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrVersionConflict
}

// List returns the user's orders in creation order, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, f ports.ListOrdersFilter) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": f.UserID}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, docs[i].toDomain())
	}
	return orders, nil
}

// EnsureIndexes creates the owner and owner+status indexes.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure order indexes: %w", err)
	}
	return nil
}
