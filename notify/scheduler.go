// Package notify wraps the OS reminder capability: schedule a repeating
// daily notification, cancel everything. Delivery is fire-and-forget; no
// acknowledgement comes back.
package notify

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler interface {
	ScheduleRepeating(hour, minute int, title, body string) error
	CancelAll()
}

// CronScheduler backs the Scheduler contract with a cron runner. deliver is
// whatever presents the notification (local banner, push relay).
type CronScheduler struct {
	cron    *cron.Cron
	deliver func(title, body string)
	log     *zap.Logger
}

func NewCronScheduler(deliver func(title, body string), log *zap.Logger) *CronScheduler {
	s := &CronScheduler{
		cron:    cron.New(),
		deliver: deliver,
		log:     log,
	}
	s.cron.Start()
	return s
}

func (s *CronScheduler) ScheduleRepeating(hour, minute int, title, body string) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid reminder time %02d:%02d", hour, minute)
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Info("delivering reminder", zap.String("title", title))
		s.deliver(title, body)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder %q: %w", title, err)
	}
	return nil
}

// CancelAll swaps in a fresh runner; the old one stops with its entries.
func (s *CronScheduler) CancelAll() {
	s.cron.Stop()
	s.cron = cron.New()
	s.cron.Start()
}

func (s *CronScheduler) Stop() {
	s.cron.Stop()
}
