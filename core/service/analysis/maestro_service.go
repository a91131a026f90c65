// Package analysis implements the batch email analysis pipeline: prompt
// construction, gateway calls, normalization and persistence of results.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/rs/zerolog"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/out"
	"mailmaestro/pkg/ratelimit"
)

const (
	// DefaultBatchSize emails are analyzed concurrently per chunk.
	DefaultBatchSize = 5
	// DefaultChunkDelay is the pause between chunks, spacing provider load.
	DefaultChunkDelay = 500 * time.Millisecond
	// DefaultCacheTTL bounds how long a cached analysis stays valid.
	DefaultCacheTTL = 24 * time.Hour
)

// Config tunes the pipeline. The zero value yields the defaults above with
// a batch-size-bounded limiter. A negative ChunkDelay disables the pause,
// for deployments that rely on the limiter's min-interval instead.
type Config struct {
	BatchSize  int
	ChunkDelay time.Duration
	Limiter    *ratelimit.Limiter
	Cache      out.AnalysisCache
	CacheTTL   time.Duration
	Logger     *zerolog.Logger
}

// Service implements in.AnalysisService.
type Service struct {
	emails  out.EmailRepository
	tasks   out.TaskRepository
	events  out.EventRepository
	gateway out.ModelGateway
	cache   out.AnalysisCache
	limiter *ratelimit.Limiter
	log     zerolog.Logger

	batchSize  int
	chunkDelay time.Duration
	cacheTTL   time.Duration
}

// NewService wires the pipeline. gateway may be nil when the provider is not
// configured; analysis requests then fail with a configuration error while
// the rest of the application keeps serving.
func NewService(
	emails out.EmailRepository,
	tasks out.TaskRepository,
	events out.EventRepository,
	gateway out.ModelGateway,
	cfg *Config,
) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	chunkDelay := cfg.ChunkDelay
	if chunkDelay == 0 {
		chunkDelay = DefaultChunkDelay
	} else if chunkDelay < 0 {
		chunkDelay = 0
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(&ratelimit.Config{MaxInFlight: batchSize})
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	var log zerolog.Logger
	if cfg.Logger != nil {
		log = *cfg.Logger
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return &Service{
		emails:     emails,
		tasks:      tasks,
		events:     events,
		gateway:    gateway,
		cache:      cfg.Cache,
		limiter:    limiter,
		log:        log.With().Str("component", "analysis").Logger(),
		batchSize:  batchSize,
		chunkDelay: chunkDelay,
		cacheTTL:   ttl,
	}
}

// cacheKey hashes the analyzed content, so an unchanged email re-run hits
// the cache while any edit misses it.
func cacheKey(email *domain.Email) string {
	h := sha256.New()
	h.Write([]byte(email.FromEmail))
	h.Write([]byte{0})
	h.Write([]byte(email.Subject))
	h.Write([]byte{0})
	h.Write([]byte(email.Body))
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}
