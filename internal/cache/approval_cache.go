package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Approval marks a client an admin has let into the assessment
type Approval struct {
	ClientID   string    `json:"clientId"`
	TokenID    string    `json:"tokenId"` // jti of the issued client token
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// ApprovalCache tracks which client tokens are still honoured
type ApprovalCache interface {
	Set(ctx context.Context, approval *Approval, ttl time.Duration) error
	Get(ctx context.Context, clientID string) (*Approval, error)
	Delete(ctx context.Context, clientID string) error
}

type approvalCache struct {
	client *redis.Client
}

func NewApprovalCache(client *redis.Client) ApprovalCache {
	return &approvalCache{
		client: client,
	}
}

func (c *approvalCache) key(clientID string) string {
	return "approval:" + clientID
}

func (c *approvalCache) Set(ctx context.Context, approval *Approval, ttl time.Duration) error {
	data, err := json.Marshal(approval)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(approval.ClientID), data, ttl).Err()
}

func (c *approvalCache) Get(ctx context.Context, clientID string) (*Approval, error) {
	data, err := c.client.Get(ctx, c.key(clientID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var approval Approval
	if err := json.Unmarshal([]byte(data), &approval); err != nil {
		return nil, err
	}
	return &approval, nil
}

func (c *approvalCache) Delete(ctx context.Context, clientID string) error {
	return c.client.Del(ctx, c.key(clientID)).Err()
}
