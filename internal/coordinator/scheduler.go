package coordinator

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduler drives the coordinator's delayed-drain mode: rather than
// processing the pending queue inline on every Receive, it runs process on
// a fixed period. Grounded on the teacher's internal/storage/scheduler.go
// Scheduler, reduced to the single job this coordinator needs. The period
// is a cron "@every" schedule: a delay below one second runs every second,
// and any fraction of a second in a longer delay is dropped.
type scheduler struct {
	mu    sync.Mutex
	c     *Coordinator
	delay time.Duration
	cron  *cron.Cron
}

func newScheduler(c *Coordinator, delay time.Duration) *scheduler {
	return &scheduler{c: c, delay: delay}
}

func (s *scheduler) start() error {
	if s.delay <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.delay), func() {
		s.c.mu.Lock()
		s.c.process()
		s.c.mu.Unlock()
	})
	if err != nil {
		s.cron = nil
		return fmt.Errorf("coordinator: scheduling drain every %s: %w", s.delay, err)
	}
	s.cron.Start()
	return nil
}

func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}
