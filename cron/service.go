package cron

import (
	"context"
	"time"

	"gopkg.in/robfig/cron.v2"

	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/log"
)

const (
	DefaultReindexSpec   = "0 0 3 * * *" // Daily at 3am
	DefaultCitationsSpec = "0 0 4 * * 0" // Sundays at 4am
	// DefaultReindexSpec = "0 */2 * * * *" // Every 2 minutes. For dev
)

// Runner executes the maintenance jobs.
type Runner interface {
	Reindex(ctx context.Context) (int, error)
	RefreshCitations(ctx context.Context) (int, error)
}

// Specs are the schedules of the jobs, with seconds. An empty spec
// disables the job.
type Specs struct {
	Reindex   string
	Citations string
}

type Service struct {
	runner Runner
	specs  Specs
	logger log.Logger
}

func NewService(runner Runner, specs Specs, logger log.Logger) *Service {
	return &Service{
		runner: runner,
		specs:  specs,
		logger: logger,
	}
}

// Run schedules the jobs and blocks until ctx is done. Job failures are
// logged and the job waits for its next run.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()

	jobs := []struct {
		spec string
		f    func(context.Context)
	}{
		{spec: s.specs.Reindex, f: s.Reindex},
		{spec: s.specs.Citations, f: s.RefreshCitations},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}

		f := job.f
		if _, err := c.AddFunc(job.spec, func() { f(ctx) }); err != nil {
			return errors.New("invalid cron spec "+job.spec, errors.WithCause(err))
		}
	}

	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}

func (s *Service) Reindex(ctx context.Context) {
	start := time.Now()
	n, err := s.runner.Reindex(ctx)
	if err != nil {
		s.logger.Errorf("could not rebuild index: %v", err)
		return
	}
	s.logger.WithField("duration", time.Since(start)).Printf("reindexed %d papers", n)
}

func (s *Service) RefreshCitations(ctx context.Context) {
	start := time.Now()
	n, err := s.runner.RefreshCitations(ctx)
	if err != nil {
		s.logger.Errorf("could not refresh citations: %v", err)
		return
	}
	s.logger.WithField("duration", time.Since(start)).Printf("updated citations of %d papers", n)
}
