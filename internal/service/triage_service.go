package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/observability"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

// TriageEngine predicts category and priority for ticket text.
type TriageEngine interface {
	Triage(title, description string) triage.Result
	ModelVersion() string
	Ready() bool
}

// TriageCache stores triage results between requests.
type TriageCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// TriageService fronts the triage engine with an optional result cache.
type TriageService struct {
	engine  TriageEngine
	cache   TriageCache
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Engine   TriageEngine
	Cache    TriageCache
	CacheTTL time.Duration
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// NewTriageService constructs the service. Cache and Metrics may be nil.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{
		engine:  deps.Engine,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// Triage returns the predicted category and priority. It never fails:
// cache errors fall through to the engine.
func (s *TriageService) Triage(ctx context.Context, title, description string) triage.Result {
	key := s.cacheKey(title, description)

	if s.cache != nil {
		var cached triage.Result
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordTriage(cached.Category, string(cached.Priority))
			return cached
		}
	}

	result := s.engine.Triage(title, description)
	s.metrics.RecordTriage(result.Category, string(result.Priority))

	// Fallback results are not cached so a model loaded later takes effect.
	if s.cache != nil && s.engine.Ready() {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			s.logger.Debug("triage cache write failed", zap.Error(err))
		}
	}
	return result
}

// ModelReady reports whether category predictions come from a trained model.
func (s *TriageService) ModelReady() bool {
	return s.engine.Ready()
}

// ModelVersion identifies the loaded model.
func (s *TriageService) ModelVersion() string {
	return s.engine.ModelVersion()
}

func (s *TriageService) cacheKey(title, description string) string {
	sum := sha256.Sum256([]byte(s.engine.ModelVersion() + "\x00" + triage.CombineText(title, description)))
	return hex.EncodeToString(sum[:])
}
