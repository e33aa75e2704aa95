package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// ErrCacheMiss marks an absent key; callers fall through to recomputation.
var ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

// VerdictCache stores reaction verdicts keyed by the content hash of the
// molecule document and the request.
type VerdictCache struct {
	client *Client
	log    logging.Logger
	prefix string
	ttl    time.Duration
}

// VerdictCacheOption customizes a VerdictCache.
type VerdictCacheOption func(*VerdictCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) VerdictCacheOption {
	return func(c *VerdictCache) { c.prefix = prefix }
}

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) VerdictCacheOption {
	return func(c *VerdictCache) { c.ttl = ttl }
}

// NewVerdictCache builds a VerdictCache over client.
func NewVerdictCache(client *Client, log logging.Logger, opts ...VerdictCacheOption) *VerdictCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &VerdictCache{
		client: client,
		log:    log,
		prefix: "chemrxn:verdict:",
		ttl:    15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the deterministic cache key for one validation call.  Reagents
// and conditions are sorted so request ordering does not split the cache.
func (c *VerdictCache) Key(doc chem.MoleculeDocument, req chem.ReactionRequest) string {
	reagents := append([]string(nil), req.Reagents...)
	conditions := append([]string(nil), req.Conditions...)
	sort.Strings(reagents)
	sort.Strings(conditions)

	h := sha256.New()
	docJSON, _ := json.Marshal(doc)
	h.Write(docJSON)
	h.Write([]byte("|" + strings.Join(reagents, ",")))
	h.Write([]byte("|" + strings.Join(conditions, ",")))
	h.Write([]byte("|" + req.Category))
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

// Get loads a cached verdict.  Returns ErrCacheMiss when absent.
func (c *VerdictCache) Get(ctx context.Context, key string) (chem.ReactionVerdict, error) {
	var verdict chem.ReactionVerdict

	data, err := c.client.Raw().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return verdict, ErrCacheMiss
	}
	if err != nil {
		return verdict, errors.Wrap(err, errors.ErrCodeCacheError, "verdict cache read failed")
	}
	if err := json.Unmarshal(data, &verdict); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		c.log.Warn("corrupt verdict cache entry", logging.String("key", key), logging.Err(err))
		return verdict, ErrCacheMiss
	}
	return verdict, nil
}

// Set stores a verdict under key.  TTL is jittered ±10% so a burst of
// identical requests does not expire in one wave.
func (c *VerdictCache) Set(ctx context.Context, key string, verdict chem.ReactionVerdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize verdict")
	}
	if err := c.client.Raw().Set(ctx, key, data, jitterTTL(c.ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "verdict cache write failed")
	}
	return nil
}

// Invalidate removes cached verdicts; useful after a rule-table reload.
func (c *VerdictCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Raw().Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "verdict cache invalidation failed")
	}
	return nil
}

// AnalysisCache stores per-atom analysis reports keyed by the content hash of
// the molecule document alone; the report depends on nothing else.
type AnalysisCache struct {
	client *Client
	log    logging.Logger
	prefix string
	ttl    time.Duration
}

// AnalysisCacheOption customizes an AnalysisCache.
type AnalysisCacheOption func(*AnalysisCache)

// WithAnalysisPrefix overrides the key prefix.
func WithAnalysisPrefix(prefix string) AnalysisCacheOption {
	return func(c *AnalysisCache) { c.prefix = prefix }
}

// WithAnalysisTTL overrides the entry lifetime.
func WithAnalysisTTL(ttl time.Duration) AnalysisCacheOption {
	return func(c *AnalysisCache) { c.ttl = ttl }
}

// NewAnalysisCache builds an AnalysisCache over client.
func NewAnalysisCache(client *Client, log logging.Logger, opts ...AnalysisCacheOption) *AnalysisCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &AnalysisCache{
		client: client,
		log:    log,
		prefix: "chemrxn:analysis:",
		ttl:    15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the deterministic cache key for one molecule document.
func (c *AnalysisCache) Key(doc chem.MoleculeDocument) string {
	h := sha256.New()
	docJSON, _ := json.Marshal(doc)
	h.Write(docJSON)
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

// Get loads a cached analysis.  Returns ErrCacheMiss when absent.
func (c *AnalysisCache) Get(ctx context.Context, key string) (reaction.Analysis, error) {
	var analysis reaction.Analysis

	data, err := c.client.Raw().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return analysis, ErrCacheMiss
	}
	if err != nil {
		return analysis, errors.Wrap(err, errors.ErrCodeCacheError, "analysis cache read failed")
	}
	if err := json.Unmarshal(data, &analysis); err != nil {
		c.log.Warn("corrupt analysis cache entry", logging.String("key", key), logging.Err(err))
		return analysis, ErrCacheMiss
	}
	return analysis, nil
}

// Set stores an analysis under key with the same jittered TTL as verdicts.
func (c *AnalysisCache) Set(ctx context.Context, key string, analysis reaction.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize analysis")
	}
	if err := c.client.Raw().Set(ctx, key, data, jitterTTL(c.ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "analysis cache write failed")
	}
	return nil
}

// jitterTTL spreads expiry by ±10%.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}
