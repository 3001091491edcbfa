package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

// Preferences are per-browser UI choices that outlive a board reload.
type Preferences struct {
	WorkflowTab string    `json:"workflow_tab"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft is a half-filled creation dialog.
type Draft struct {
	Kind      string          `json:"kind"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Preferences
func (c *Client) SetPreferences(ctx context.Context, sessionID string, prefs *Preferences, ttl time.Duration) error {
	prefs.UpdatedAt = time.Now()
	return c.setJSON(ctx, "prefs:"+sessionID, prefs, ttl)
}

func (c *Client) GetPreferences(ctx context.Context, sessionID string) (*Preferences, error) {
	var prefs Preferences
	if err := c.getJSON(ctx, "prefs:"+sessionID, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Dialog drafts
func draftKey(kind, sessionID string) string {
	return fmt.Sprintf("draft:%s:%s", kind, sessionID)
}

func (c *Client) SetDraft(ctx context.Context, sessionID string, draft *Draft, ttl time.Duration) error {
	draft.UpdatedAt = time.Now()
	return c.setJSON(ctx, draftKey(draft.Kind, sessionID), draft, ttl)
}

func (c *Client) GetDraft(ctx context.Context, kind, sessionID string) (*Draft, error) {
	var draft Draft
	if err := c.getJSON(ctx, draftKey(kind, sessionID), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *Client) DeleteDraft(ctx context.Context, kind, sessionID string) error {
	return c.rdb.Del(ctx, draftKey(kind, sessionID)).Err()
}

func (c *Client) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) getJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
