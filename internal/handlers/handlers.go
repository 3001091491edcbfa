package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"furniture_board/internal/board"
	"furniture_board/internal/models"
	"furniture_board/internal/redis"
	"furniture_board/internal/repository"
	"furniture_board/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCache keeps per-browser preferences and dialog drafts.
type SessionCache interface {
	SetPreferences(ctx context.Context, sessionID string, prefs *redis.Preferences, ttl time.Duration) error
	GetPreferences(ctx context.Context, sessionID string) (*redis.Preferences, error)
	SetDraft(ctx context.Context, sessionID string, draft *redis.Draft, ttl time.Duration) error
	GetDraft(ctx context.Context, kind, sessionID string) (*redis.Draft, error)
	DeleteDraft(ctx context.Context, kind, sessionID string) error
}

// respondError maps domain errors to status codes. Anything unrecognised is
// a failure of the database behind the board.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, board.ErrValidation),
		errors.Is(err, board.ErrIncompleteModal),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrInvalidStage):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func sessionID(c *gin.Context) string {
	if id := c.GetString("session_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Session-ID")
}

func parseKind(s string) (models.WorkflowType, bool) {
	switch kind := models.WorkflowType(s); kind {
	case models.WorkflowOrder, models.WorkflowExpense:
		return kind, true
	}
	return "", false
}

// Drafts keeps failed dialog input per browser. A nil cache disables it.
type Drafts struct {
	cache SessionCache
	ttl   time.Duration
	log   *zap.Logger
}

func NewDrafts(cache SessionCache, ttl time.Duration, log *zap.Logger) Drafts {
	return Drafts{cache: cache, ttl: ttl, log: log}
}

func (d Drafts) save(c *gin.Context, kind models.WorkflowType, form interface{}) {
	if d.cache == nil {
		return
	}
	data, err := json.Marshal(form)
	if err != nil {
		return
	}
	draft := &redis.Draft{Kind: string(kind), Data: data}
	if err := d.cache.SetDraft(c.Request.Context(), sessionID(c), draft, d.ttl); err != nil {
		d.log.Warn("Failed to save draft", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (d Drafts) discard(c *gin.Context, kind models.WorkflowType) {
	if d.cache == nil {
		return
	}
	if err := d.cache.DeleteDraft(c.Request.Context(), string(kind), sessionID(c)); err != nil {
		d.log.Warn("Failed to delete draft", zap.String("kind", string(kind)), zap.Error(err))
	}
}
