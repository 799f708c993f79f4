package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garmentscore/internal/model"
)

// AssessmentRepo stores scored assessments and their raw responses
type AssessmentRepo interface {
	// SaveSubmission writes the assessment and its responses in one transaction
	SaveSubmission(ctx context.Context, record *model.AssessmentRecord, responses []model.ResponseRecord) error
	GetByID(ctx context.Context, id string) (*model.AssessmentRecord, error)
	GetByClientID(ctx context.Context, clientID string) ([]*model.AssessmentRecord, error)
	GetResponses(ctx context.Context, assessmentID string) (model.Responses, error)
}

type assessmentRepo struct {
	client      *mongo.Client
	assessments *mongo.Collection
	responses   *mongo.Collection
}

// NewAssessmentRepo creates a new assessment repository
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{
		client:      db.Client(),
		assessments: db.Collection("assessments"),
		responses:   db.Collection("responses"),
	}
}

func (r *assessmentRepo) SaveSubmission(ctx context.Context, record *model.AssessmentRecord, responses []model.ResponseRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.assessments.InsertOne(sc, record); err != nil {
			return nil, err
		}
		if len(responses) == 0 {
			return nil, nil
		}
		docs := make([]interface{}, len(responses))
		for i := range responses {
			docs[i] = responses[i]
		}
		_, err := r.responses.InsertMany(sc, docs)
		return nil, err
	})
	return err
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.AssessmentRecord, error) {
	var record model.AssessmentRecord
	err := r.assessments.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *assessmentRepo) GetByClientID(ctx context.Context, clientID string) ([]*model.AssessmentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.assessments.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.AssessmentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *assessmentRepo) GetResponses(ctx context.Context, assessmentID string) (model.Responses, error) {
	cursor, err := r.responses.Find(ctx, bson.M{"assessment_id": assessmentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []model.ResponseRecord
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	responses := make(model.Responses, len(rows))
	for _, row := range rows {
		responses[row.QuestionID] = row.Value
	}
	return responses, nil
}
