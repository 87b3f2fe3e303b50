// Package scheduler owns the wake/sleep loop that fires backup runs on a
// single recurring calendar trigger.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is what the scheduler fires when the trigger is due. Execution is
// synchronous; the loop does not resume polling until the run completes.
type Job interface {
	Execute(ctx context.Context) error
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Rule is the single trigger definition, fixed for the process lifetime.
// Either Weekday+At (e.g. friday 08:00) or a raw cron expression.
type Rule struct {
	Weekday      string
	At           string
	Cron         string
	PollInterval time.Duration
}

type Scheduler struct {
	schedule cron.Schedule
	interval time.Duration
	job      Job
	logger   Logger

	now func() time.Time

	// next is the earliest occurrence that has not fired yet. Advancing it
	// past the current occurrence after a run is what prevents a second
	// firing inside the same matching minute window.
	next time.Time
}

func New(rule Rule, job Job, logger Logger) (*Scheduler, error) {
	spec, err := rule.cronSpec()
	if err != nil {
		return nil, err
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid trigger %q: %w", spec, err)
	}

	interval := rule.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}

	return &Scheduler{
		schedule: schedule,
		interval: interval,
		job:      job,
		logger:   logger,
		now:      time.Now,
	}, nil
}

var weekdayTokens = map[string]string{
	"sunday":    "SUN",
	"monday":    "MON",
	"tuesday":   "TUE",
	"wednesday": "WED",
	"thursday":  "THU",
	"friday":    "FRI",
	"saturday":  "SAT",
}

func (r Rule) cronSpec() (string, error) {
	if r.Cron != "" {
		return r.Cron, nil
	}

	token, ok := weekdayTokens[strings.ToLower(r.Weekday)]
	if !ok {
		return "", fmt.Errorf("invalid weekday %q", r.Weekday)
	}

	at, err := time.Parse("15:04", r.At)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", r.At, err)
	}

	return fmt.Sprintf("%d %d * * %s", at.Minute(), at.Hour(), token), nil
}

// Run polls the wall clock until ctx is cancelled. A due tick invokes the job
// synchronously, so two runs can never overlap from this loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.arm(s.now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) arm(from time.Time) {
	s.next = s.schedule.Next(from)
	s.logger.Infof("Next backup scheduled for %s", s.next.Format(time.RFC1123))
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	if now.Before(s.next) {
		return
	}

	s.logger.Infof("Trigger due (occurrence %s), starting backup run", s.next.Format(time.RFC1123))
	if err := s.job.Execute(ctx); err != nil {
		s.logger.Errorf("Backup run failed: %v", err)
	}

	s.arm(now)
}
