package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tastythames/pecan-config/internal/cache"
)

// Value names every probe result carries.
const (
	ValueProbeDuration = "pecan_host_probe_duration_seconds"
	ValueLastProbe     = "pecan_host_last_probe_timestamp_seconds"
	ValueUp            = "pecan_host_up"
)

// Prober checks one host and returns the values it measured.
type Prober interface {
	Probe(ctx context.Context, job Job) (map[string]float64, error)
}

type ProberFunc func(ctx context.Context, job Job) (map[string]float64, error)

func (f ProberFunc) Probe(ctx context.Context, job Job) (map[string]float64, error) {
	return f(ctx, job)
}

// StartWorker probes jobs until the channel is closed. Each probe gets its
// own timeout.
func StartWorker(id int, jobs <-chan Job, c cache.Cache, p Prober, timeout time.Duration) {
	wlog := log.WithField("worker", id)
	wlog.Debug("worker started")

	for job := range jobs {
		res := probeOne(p, job, timeout)
		if res.Err != nil {
			wlog.WithFields(logrus.Fields{"host": job.Host, "probe": job.Probe}).WithError(res.Err).Warn("probe failed")
		}
		c.Set(job.Host, res)
	}
	wlog.Debug("worker stopped")
}

func probeOne(p Prober, job Job, timeout time.Duration) cache.Result {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	values, err := p.Probe(ctx, job)
	dur := time.Since(start)

	if values == nil {
		values = map[string]float64{}
	}
	values[ValueProbeDuration] = dur.Seconds()
	values[ValueLastProbe] = float64(start.Unix())
	values[ValueUp] = 1
	if err != nil {
		values[ValueUp] = 0
	}

	return cache.Result{
		At:       start,
		Duration: dur,
		Labels:   job.Labels,
		Values:   values,
		Err:      err,
	}
}
