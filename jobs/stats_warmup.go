package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/praxis-pm/praxis/internal/jobs"
	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/stats"
)

const (
	// TaskStatsWarmup pre-computes dashboard aggregates for the range presets.
	TaskStatsWarmup = "stats:warmup"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StatsWarmupPayload selects which range presets to warm. An empty list warms
// every preset.
type StatsWarmupPayload struct {
	Ranges []string `json:"ranges,omitempty"`
}

// NewStatsWarmupTask constructs an Asynq task covering the given presets.
func NewStatsWarmupTask(ranges ...string) (*asynq.Task, error) {
	payload := StatsWarmupPayload{Ranges: ranges}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, body, asynq.Queue(QueueDefault)), nil
}

// StatsWarmupJob pre-populates dashboard caches so interactive loads hit Redis.
type StatsWarmupJob struct {
	Stats   *stats.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(statsSvc *stats.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatsWarmupJob {
	return &StatsWarmupJob{
		Stats:   statsSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stats warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tags := make([]ledger.RangeTag, 0, len(payload.Ranges))
	for _, raw := range payload.Ranges {
		tag, err := ledger.ParseRangeTag(raw)
		if err != nil {
			return asynq.SkipRetry
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []ledger.RangeTag{ledger.RangeWeek, ledger.RangeMonth, ledger.RangeQuarter, ledger.RangeYear}
	}

	tracker := j.metrics().Track(TaskStatsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("ranges", len(tags)))
	logger.Info("starting stats warmup")

	start := j.now()
	warmed := 0
	for _, tag := range tags {
		if err := j.warmRange(ctx, tag); err != nil {
			resultErr = err
			logger.Error("warm range", slog.String("range", string(tag)), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed stats warmup", slog.Int("ranges", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *StatsWarmupJob) warmRange(ctx context.Context, tag ledger.RangeTag) error {
	if j.Stats == nil {
		return nil
	}
	// Tighten each preset with a timeout to avoid long-running jobs.
	rangeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	return j.Stats.Warm(rangeCtx, tag)
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskStatsWarmup))
}

func (j *StatsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StatsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
