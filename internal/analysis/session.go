package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/get2salam/price-matrix-demo/internal/pricing"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the full state of one analysis, stored in Redis for the TTL
// window so recommendations and pins keep working off the same ingested
// numbers while the upload itself is long gone.
type Session struct {
	AnalysisID        uuid.UUID              `json:"analysis_id"`
	MatrixID          uuid.UUID              `json:"matrix_id"`
	RecordCount       int                    `json:"record_count"`
	SkippedCount      int                    `json:"skipped_count"`
	UnclassifiedCount int                    `json:"unclassified_count"`
	DetectedColumns   []string               `json:"detected_columns"`
	TotalCost         float64                `json:"total_cost"`
	TotalRevenue      float64                `json:"total_revenue"`
	CurrentProfit     float64                `json:"current_profit"`
	Tiers             []pricing.TierAnalysis `json:"tiers"`
	TargetSpec        *TargetSpec            `json:"target_spec,omitempty"`
	Ledger            Ledger                 `json:"ledger"`
	CreatedAt         time.Time              `json:"created_at"`
}

// sessionRedis defines the operations the session store needs from the
// Redis client.
type sessionRedis interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AnalysisSessionKey(analysisID string) string
}

// SessionStore persists analysis sessions as JSON documents under the
// namespaced analysis key, refreshing the TTL on every save.
type SessionStore struct {
	redis sessionRedis
	ttl   time.Duration
}

// NewSessionStore wires a session store with the given session TTL.
func NewSessionStore(client sessionRedis, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: client, ttl: ttl}
}

// Save writes the session document, resetting its expiry.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode analysis session")
	}
	key := s.redis.AnalysisSessionKey(session.AnalysisID.String())
	if err := s.redis.Set(ctx, key, string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store analysis session")
	}
	return nil
}

// Load fetches a session; a missing or expired key maps to not-found.
func (s *SessionStore) Load(ctx context.Context, analysisID uuid.UUID) (*Session, error) {
	key := s.redis.AnalysisSessionKey(analysisID.String())
	raw, err := s.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "analysis not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load analysis session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode analysis session")
	}
	return &session, nil
}

// Delete drops the session document.
func (s *SessionStore) Delete(ctx context.Context, analysisID uuid.UUID) error {
	key := s.redis.AnalysisSessionKey(analysisID.String())
	if err := s.redis.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete analysis session")
	}
	return nil
}
