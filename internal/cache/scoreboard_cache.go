package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const scoreboardKey = "scoreboard:overall"

// ScoreboardCache ranks clients by the overall percentage of their latest assessment
type ScoreboardCache interface {
	Record(ctx context.Context, clientID string, percentage float64) error
	GetTop(ctx context.Context, limit int) ([]ScoreboardEntry, error)
	GetRank(ctx context.Context, clientID string) (*ScoreboardEntry, error)
}

// ScoreboardEntry represents a single scoreboard row
type ScoreboardEntry struct {
	ClientID   string  `json:"clientId"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank"`
}

type scoreboardCache struct {
	client *redis.Client
}

// NewScoreboardCache creates a new scoreboard cache
func NewScoreboardCache(client *redis.Client) ScoreboardCache {
	return &scoreboardCache{
		client: client,
	}
}

// Record overwrites the client's score; the latest assessment wins
func (c *scoreboardCache) Record(ctx context.Context, clientID string, percentage float64) error {
	return c.client.ZAdd(ctx, scoreboardKey, redis.Z{
		Score:  percentage,
		Member: clientID,
	}).Err()
}

func (c *scoreboardCache) GetTop(ctx context.Context, limit int) ([]ScoreboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := c.client.ZRevRangeWithScores(ctx, scoreboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ScoreboardEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = ScoreboardEntry{
			ClientID:   member,
			Percentage: z.Score,
			Rank:       i + 1,
		}
	}
	return entries, nil
}

// GetRank returns the client's 1-based position and score, nil when the client has none
func (c *scoreboardCache) GetRank(ctx context.Context, clientID string) (*ScoreboardEntry, error) {
	pipe := c.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, scoreboardKey, clientID)
	scoreCmd := pipe.ZScore(ctx, scoreboardKey, clientID)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	rank, err := rankCmd.Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	score, err := scoreCmd.Result()
	if err != nil {
		return nil, err
	}
	return &ScoreboardEntry{ClientID: clientID, Percentage: score, Rank: int(rank) + 1}, nil
}
