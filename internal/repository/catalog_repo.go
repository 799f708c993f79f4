package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garmentscore/internal/model"
)

// CatalogRepo handles MongoDB operations for categories and questions
type CatalogRepo interface {
	GetActive(ctx context.Context) (*model.Catalog, error)
	UpsertCategory(ctx context.Context, category *model.Category) error
	UpsertQuestion(ctx context.Context, question *model.Question) error
	DeactivateMissing(ctx context.Context, keepIDs []string) error
	RetireMissingCategories(ctx context.Context, keepIDs []string) error
}

type catalogRepo struct {
	categories *mongo.Collection
	questions  *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		categories: db.Collection("categories"),
		questions:  db.Collection("questions"),
	}
}

// GetActive returns current categories and active questions ordered by ordinal
func (r *catalogRepo) GetActive(ctx context.Context) (*model.Catalog, error) {
	byOrdinal := options.Find().SetSort(bson.D{{Key: "ordinal", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.categories.Find(ctx, bson.M{"retired": bson.M{"$ne": true}}, byOrdinal)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	cursor, err = r.questions.Find(ctx, bson.M{"active": true}, byOrdinal)
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	catalog := &model.Catalog{Categories: categories, Questions: questions}
	catalog.Resolve()
	return catalog, nil
}

func (r *catalogRepo) UpsertCategory(ctx context.Context, category *model.Category) error {
	category.UpdatedAt = time.Now()
	category.Retired = false
	opts := options.Replace().SetUpsert(true)
	_, err := r.categories.ReplaceOne(ctx, bson.M{"_id": category.ID}, category, opts)
	return err
}

func (r *catalogRepo) UpsertQuestion(ctx context.Context, question *model.Question) error {
	question.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.questions.ReplaceOne(ctx, bson.M{"_id": question.ID}, question, opts)
	return err
}

// DeactivateMissing retires questions that are no longer part of the seed
func (r *catalogRepo) DeactivateMissing(ctx context.Context, keepIDs []string) error {
	_, err := r.questions.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$nin": keepIDs}},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	return err
}

// RetireMissingCategories hides categories that are no longer part of the seed
func (r *catalogRepo) RetireMissingCategories(ctx context.Context, keepIDs []string) error {
	_, err := r.categories.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$nin": keepIDs}},
		bson.M{"$set": bson.M{"retired": true, "updatedAt": time.Now()}},
	)
	return err
}
