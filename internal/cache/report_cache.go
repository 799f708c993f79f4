package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"garmentscore/internal/model"
)

// ReportCache holds recently produced reports so the client's first reads skip Mongo
type ReportCache interface {
	Get(ctx context.Context, reportID string) (*model.Report, error)
	Set(ctx context.Context, report *model.Report) error
	// GetLatestID returns the newest report id of an assessment, "" if unknown
	GetLatestID(ctx context.Context, assessmentID string) (string, error)
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &reportCache{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *reportCache) reportKey(reportID string) string {
	return fmt.Sprintf("report:%s", reportID)
}

func (c *reportCache) latestKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:report", assessmentID)
}

func (c *reportCache) Get(ctx context.Context, reportID string) (*model.Report, error) {
	data, err := c.client.Get(ctx, c.reportKey(reportID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.reportKey(report.ID), data, c.ttl)
	pipe.Set(ctx, c.latestKey(report.AssessmentID), report.ID, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *reportCache) GetLatestID(ctx context.Context, assessmentID string) (string, error) {
	id, err := c.client.Get(ctx, c.latestKey(assessmentID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}
