package scheduler

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	logger "github.com/tastythames/pecan-config/internal/logger"
)

var log = logger.Get()

type Scheduler struct {
	interval time.Duration
	jitter   time.Duration

	jobCh chan<- Job

	enqueued uint64
	dropped  uint64
}

type Options struct {
	Interval time.Duration
	Jitter   time.Duration
	JobCh    chan<- Job
}

// NewScheduler creates a scheduler that periodically enqueues jobs into
// JobCh, waiting a random 0..Jitter before each round.
func NewScheduler(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &Scheduler{
		interval: opts.Interval,
		jitter:   opts.Jitter,
		jobCh:    opts.JobCh,
	}
}

// Run enqueues jobs once immediately and then every interval until ctx is
// done.
func (s *Scheduler) Run(ctx context.Context, jobs []Job) {
	s.enqueueAll(ctx, jobs)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.jitter > 0 {
				delay := time.Duration(rand.Int63n(int64(s.jitter)))
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			s.enqueueAll(ctx, jobs)
		}
	}
}

// enqueueAll never blocks: when the queue is full the job is dropped and
// counted, so slow hosts cannot stall the schedule.
func (s *Scheduler) enqueueAll(ctx context.Context, jobs []Job) {
	var dropped int
	for _, j := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case s.jobCh <- j:
			atomic.AddUint64(&s.enqueued, 1)
		default:
			atomic.AddUint64(&s.dropped, 1)
			dropped++
		}
	}

	if dropped > 0 {
		log.WithFields(logrus.Fields{
			"dropped": dropped,
			"total":   atomic.LoadUint64(&s.dropped),
		}).Warn("scheduler: probe queue full")
	}
}

func (s *Scheduler) Stats() (enqueued uint64, dropped uint64) {
	return atomic.LoadUint64(&s.enqueued), atomic.LoadUint64(&s.dropped)
}
