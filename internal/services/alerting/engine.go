package alerting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"StressWatch/internal/domain/models"
	"StressWatch/internal/domain/repository"
	"StressWatch/internal/service/cache"
	"StressWatch/pkg/logger"
)

type Config struct {
	// MinStressCount is how many indicators must classify as STRESS in the
	// same cycle before an alert fires.
	MinStressCount int
	// DedupWindow suppresses repeats of the same condition. The dedup key
	// buckets time by this window, so an ongoing condition re-alerts at
	// most once per window.
	DedupWindow time.Duration
}

func DefaultConfig() Config {
	return Config{MinStressCount: 2, DedupWindow: 24 * time.Hour}
}

// Engine turns completed cycle snapshots into deduplicated alerts. It must
// only be consulted after every indicator scheduled for the cycle has
// resolved; partial snapshots would race the threshold count.
type Engine struct {
	cfg     Config
	dedup   cache.Store
	metrics repository.Metrics
	log     *logger.Logger
}

func NewEngine(cfg Config, dedup cache.Store, metrics repository.Metrics, log *logger.Logger) *Engine {
	def := DefaultConfig()
	if cfg.MinStressCount <= 0 {
		cfg.MinStressCount = def.MinStressCount
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = def.DedupWindow
	}
	return &Engine{cfg: cfg, dedup: dedup, metrics: metrics, log: log}
}

// Evaluate returns a new alert when the stress threshold is met and the same
// condition has not already alerted within the dedup window, nil otherwise.
// Indicators without data this cycle never count toward the threshold.
func (e *Engine) Evaluate(ctx context.Context, snap models.CycleSnapshot) (*models.Alert, error) {
	var stressed []string
	for code, r := range snap.Results {
		if r.HasData && r.State == models.StateStress {
			stressed = append(stressed, code)
		}
	}
	if len(stressed) < e.cfg.MinStressCount {
		return nil, nil
	}
	sort.Strings(stressed)
	key := e.dedupKey(stressed, snap.Timestamp)

	if _, seen, err := e.dedup.Get(ctx, key); err != nil {
		// A broken dedup store must not swallow alerts; a duplicate beats
		// a missed one.
		e.log.Warn("alert dedup lookup failed", logger.Error(err), logger.String("key", key))
		e.metrics.RecordError("dedup_lookup")
	} else if seen {
		e.metrics.RecordAlert(false)
		return nil, nil
	}

	a := &models.Alert{
		ID:        uuid.NewString(),
		Timestamp: snap.Timestamp,
		Type:      models.AlertTypeStressThreshold,
		Message: fmt.Sprintf("market stress: %d indicators at STRESS (%s)",
			len(stressed), strings.Join(stressed, ", ")),
		AffectedIndicators: stressed,
		DedupKey:           key,
	}
	if err := e.dedup.Set(ctx, key, []byte{1}, e.cfg.DedupWindow); err != nil {
		e.log.Warn("alert dedup marker write failed", logger.Error(err), logger.String("key", key))
		e.metrics.RecordError("dedup_write")
	}
	e.metrics.RecordAlert(true)
	return a, nil
}

// dedupKey identifies a condition by the sorted affected set and the time
// bucket. Ordering of the input slice never changes the key; the caller
// passes it sorted.
func (e *Engine) dedupKey(sortedCodes []string, ts time.Time) string {
	bucket := ts.UTC().Truncate(e.cfg.DedupWindow)
	return "alert:" + strings.Join(sortedCodes, ",") + "@" + bucket.Format(time.RFC3339)
}
