package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jewelstore/models"
)

// MongoOrders stores orders in the "orders" collection.
type MongoOrders struct {
	collection *mongo.Collection
}

// NewMongoOrders wires the orders collection and ensures the unique sparse
// index backing idempotency-key deduplication.
func NewMongoOrders(client *mongo.Client) (*MongoOrders, error) {
	collection := client.Database("jewelstore").Collection("orders")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoOrders{collection: collection}, nil
}

func (r *MongoOrders) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.Status = models.StatusPending
	order.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *MongoOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrders) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition is a single conditional update: the filter admits only the legal
// source statuses (plus the target itself, so retries are no-op successes).
// Mongo's per-document atomicity makes concurrent transitions last-writer-wins
// with no intermediate value.
func (r *MongoOrders) Transition(ctx context.Context, id primitive.ObjectID, to models.OrderStatus) (*models.Order, error) {
	allowed := append([]models.OrderStatus{to}, models.TransitionSources(to)...)
	filter := bson.M{"_id": id, "status": bson.M{"$in": allowed}}
	update := bson.M{"$set": bson.M{"status": to}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// No match: either the order is gone or its status forbids the move.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrders) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ OrderRepository = (*MongoOrders)(nil)
