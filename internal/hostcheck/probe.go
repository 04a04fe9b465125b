package hostcheck

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/tastythames/pecan-config/internal/metrics"
	"github.com/tastythames/pecan-config/internal/mqclient"
	"github.com/tastythames/pecan-config/internal/scheduler"
	"github.com/tastythames/pecan-config/internal/sshclient"
)

// Dialer opens SSH connections; *sshclient.Client satisfies it through
// SSHDialer.
type Dialer interface {
	Dial(ctx context.Context, host string) (Runner, error)
}

// Runner runs allowed commands on one connection.
type Runner interface {
	Run(ctx context.Context, cmd sshclient.AllowedCommand) (string, error)
	Close() error
}

// SSHDialer adapts an sshclient.Client to Dialer.
type SSHDialer struct{ Client *sshclient.Client }

func (d SSHDialer) Dial(ctx context.Context, host string) (Runner, error) {
	conn, err := d.Client.Dial(ctx, host)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// BrokerInspector reports the state of a RabbitMQ queue.
type BrokerInspector func(ctx context.Context, uri, queue string) (mqclient.QueueState, error)

// Prober dispatches a job to the SSH or broker check.
type Prober struct {
	SSH    Dialer
	Broker BrokerInspector
}

func (p *Prober) Probe(ctx context.Context, job scheduler.Job) (map[string]float64, error) {
	switch job.Probe {
	case scheduler.ProbeSSH:
		if p.SSH == nil {
			return nil, errors.New("ssh probing is not configured")
		}
		return p.probeSSH(ctx, job)
	case scheduler.ProbeBroker:
		if p.Broker == nil {
			return nil, errors.New("broker probing is not configured")
		}
		return p.probeBroker(ctx, job)
	}
	return nil, fmt.Errorf("unknown probe %q", job.Probe)
}

func (p *Prober) probeSSH(ctx context.Context, job scheduler.Job) (map[string]float64, error) {
	conn, err := p.SSH.Dial(ctx, job.Host)
	if err != nil {
		return nil, fmt.Errorf("ssh %s: %w", job.Host, err)
	}
	defer conn.Close()

	values := map[string]float64{}

	out, err := conn.Run(ctx, sshclient.CmdUptime())
	if err != nil {
		return nil, fmt.Errorf("uptime: %w", err)
	}
	if secs, err := sshclient.ParseUptimeSeconds(out); err == nil {
		values[metrics.MetricUptimeSeconds] = secs
	}

	if out, err := conn.Run(ctx, sshclient.CmdLoadavg()); err == nil {
		if load, err := sshclient.ParseLoad1(out); err == nil {
			values[metrics.MetricLoad1] = load
		}
	}

	if out, err := conn.Run(ctx, sshclient.CmdMeminfo()); err == nil {
		if total, avail, err := sshclient.ParseMeminfo(out); err == nil {
			values[metrics.MetricMemTotalBytes] = total
			values[metrics.MetricMemAvailBytes] = avail
		}
	}

	missing := 0
	for _, bin := range job.Binaries {
		_, err := conn.Run(ctx, sshclient.CmdLookPath(bin))
		var exitErr *ssh.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			missing++
		default:
			return values, fmt.Errorf("look up %s: %w", bin, err)
		}
	}
	values[metrics.MetricSchedulerMissing] = float64(missing)
	values[metrics.MetricSchedulerReady] = 0
	if missing == 0 {
		values[metrics.MetricSchedulerReady] = 1
	}
	return values, nil
}

func (p *Prober) probeBroker(ctx context.Context, job scheduler.Job) (map[string]float64, error) {
	st, err := p.Broker(ctx, job.BrokerURI, job.Queue)
	if err != nil {
		return nil, err
	}
	values := map[string]float64{}
	if job.Queue != "" {
		values[metrics.MetricQueueMessages] = float64(st.Messages)
		values[metrics.MetricQueueConsumers] = float64(st.Consumers)
	}
	return values, nil
}
