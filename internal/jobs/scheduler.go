package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 30 * time.Second

var (
	gatewayUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_gateway_up",
		Help: "1 when the last gateway probe succeeded.",
	})
	sweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_swept_entries_total",
		Help: "Expired session and notice entries removed by the sweep job.",
	}, []string{"store"})
)

type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})))
	return &Scheduler{
		cron: c,
		log:  log,
	}
}

// Add registers a job under a six field cron schedule. Each run gets its own
// timeout; failures are logged and the schedule continues.
func (s *Scheduler) Add(name, schedule string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		started := time.Now()
		if err := run(ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", name).Dur("took", time.Since(started)).Msg("job done")
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeGateway records gateway reachability in the portal_gateway_up gauge.
func ProbeGateway(p Pinger, log zerolog.Logger) func(ctx context.Context) error {
	healthy := true
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			gatewayUp.Set(0)
			if healthy {
				log.Warn().Err(err).Msg("gateway unreachable")
			}
			healthy = false
			return nil
		}
		gatewayUp.Set(1)
		if !healthy {
			log.Info().Msg("gateway reachable again")
		}
		healthy = true
		return nil
	}
}

// Sweeper removes expired entries from one store.
type Sweeper struct {
	Name  string
	Sweep func(ctx context.Context) (int64, error)
}

// Sweep runs every sweeper, logging removals, and returns the first error.
func Sweep(log zerolog.Logger, sweepers ...Sweeper) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var firstErr error
		for _, sw := range sweepers {
			n, err := sw.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Str("store", sw.Name).Msg("sweep failed")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if n > 0 {
				sweptTotal.WithLabelValues(sw.Name).Add(float64(n))
				log.Info().Int64("removed", n).Str("store", sw.Name).Msg("swept expired entries")
			}
		}
		return firstErr
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
