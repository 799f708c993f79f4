package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garmentscore/internal/model"
)

// ReportRepo handles MongoDB operations for reports. Reports are insert-only.
type ReportRepo interface {
	Save(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	GetLatestByAssessment(ctx context.Context, assessmentID string) (*model.Report, error)
}

type reportRepo struct {
	reports *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		reports: db.Collection("reports"),
	}
}

func (r *reportRepo) Save(ctx context.Context, report *model.Report) error {
	_, err := r.reports.InsertOne(ctx, report)
	return err
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.reports.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetLatestByAssessment(ctx context.Context, assessmentID string) (*model.Report, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var report model.Report
	err := r.reports.FindOne(ctx, bson.M{"assessment_id": assessmentID}, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
