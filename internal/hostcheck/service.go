package hostcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tastythames/pecan-config/internal/cache"
	"github.com/tastythames/pecan-config/internal/hostlist"
	logger "github.com/tastythames/pecan-config/internal/logger"
	"github.com/tastythames/pecan-config/internal/metrics"
	"github.com/tastythames/pecan-config/internal/scheduler"
)

var log = logger.Get()

type Options struct {
	Listen   string
	Interval time.Duration
	Jitter   time.Duration
	Workers  int
	Timeout  time.Duration
	Prober   scheduler.Prober
}

type Service struct {
	opts  Options
	hosts hostlist.List
	jobs  []scheduler.Job
	cache *cache.MemCache
	jobCh chan scheduler.Job
	sched *scheduler.Scheduler
}

func New(hosts hostlist.List, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	jobs := Jobs(hosts)
	jobCh := make(chan scheduler.Job, len(jobs)+opts.Workers)
	return &Service{
		opts:  opts,
		hosts: hosts,
		jobs:  jobs,
		cache: cache.NewMemCache(),
		jobCh: jobCh,
		sched: scheduler.NewScheduler(scheduler.Options{
			Interval: opts.Interval,
			Jitter:   opts.Jitter,
			JobCh:    jobCh,
		}),
	}
}

// Run probes hosts and serves HTTP until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < s.opts.Workers; i++ {
		id := i
		g.Go(func() error {
			scheduler.StartWorker(id, s.jobCh, s.cache, s.opts.Prober, s.opts.Timeout)
			return nil
		})
	}

	g.Go(func() error {
		defer close(s.jobCh)
		s.sched.Run(ctx, s.jobs)
		return nil
	})

	g.Go(func() error {
		log.WithField("listen", s.opts.Listen).WithField("probed", len(s.jobs)).Info("host check listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Service) Handler() http.Handler {
	r := metrics.NewRenderer(s.cache, s.hostLabels, s.sched.Stats)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Write(w)
	})
	mux.HandleFunc("/hosts", s.serveHosts)
	return mux
}

func (s *Service) hostLabels() map[string]map[string]string {
	out := make(map[string]map[string]string, s.hosts.Len())
	s.hosts.Each(func(name string, h hostlist.Host) {
		out[name] = Labels(name, h)
	})
	return out
}

type hostStatus struct {
	Host        string             `json:"host"`
	DisplayName string             `json:"displayname,omitempty"`
	Kind        hostlist.Kind      `json:"kind"`
	Probe       scheduler.Probe    `json:"probe,omitempty"`
	CheckedAt   *time.Time         `json:"checked_at,omitempty"`
	Up          *bool              `json:"up,omitempty"`
	Error       string             `json:"error,omitempty"`
	Values      map[string]float64 `json:"values,omitempty"`
}

func (s *Service) serveHosts(w http.ResponseWriter, _ *http.Request) {
	probes := make(map[string]scheduler.Probe, len(s.jobs))
	for _, j := range s.jobs {
		probes[j.Host] = j.Probe
	}

	out := make([]hostStatus, 0, s.hosts.Len())
	s.hosts.Each(func(name string, h hostlist.Host) {
		st := hostStatus{
			Host:        name,
			DisplayName: h.DisplayName,
			Kind:        h.Kind(),
			Probe:       probes[name],
		}
		if res, ok := s.cache.Get(name); ok {
			at, up := res.At, res.Up()
			st.CheckedAt = &at
			st.Up = &up
			st.Values = res.Values
			if res.Err != nil {
				st.Error = res.Err.Error()
			}
		}
		out = append(out, st)
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.WithError(err).Warn("encode /hosts")
	}
}
