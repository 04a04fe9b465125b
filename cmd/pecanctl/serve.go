package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/tastythames/pecan-config/internal/config"
	"github.com/tastythames/pecan-config/internal/hostcheck"
	logger "github.com/tastythames/pecan-config/internal/logger"
	"github.com/tastythames/pecan-config/internal/mqclient"
	"github.com/tastythames/pecan-config/internal/sshclient"
)

func addServe(app *kingpin.Application, c *cli) {
	cmd := app.Command("serve", "Probe the execution hosts and serve /metrics, /hosts and /health.")
	listen := cmd.Flag("listen", "Override hostcheck.listen.").String()
	logToFile := cmd.Flag("log-to-file", "Also append logs to the configured logfile.").Bool()
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		if *logToFile && cfg.LogFile != "" {
			closer, err := logger.TeeToFile(cfg.LogFile)
			if err != nil {
				return err
			}
			defer closer.Close()
		}

		opts := serviceOptions(cfg)
		if *listen != "" {
			opts.Listen = *listen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = hostcheck.New(cfg.Hostlist, opts).Run(ctx)
		log.Info("shutdown...")
		return err
	})
}

// serviceOptions maps the hostcheck settings onto the service. SSH probing
// is left off when no credentials are configured.
func serviceOptions(cfg *config.Config) hostcheck.Options {
	hc := cfg.HostCheck
	prober := &hostcheck.Prober{
		Broker: func(ctx context.Context, uri, queue string) (mqclient.QueueState, error) {
			return mqclient.Inspect(ctx, uri, queue, mqclient.Config{Timeout: hc.Timeout, Retries: 2})
		},
	}

	sshc, err := sshclient.New(sshclient.Config{
		User:        hc.SSHUser,
		Port:        hc.SSHPort,
		Timeout:     hc.Timeout,
		KeyPath:     hc.SSHKeyPath,
		PasswordEnv: hc.SSHPasswordEnv,
		KnownHosts:  hc.KnownHosts,
	})
	if err != nil {
		log.WithError(err).Warn("ssh probing disabled")
	} else {
		if hc.KnownHosts == "" {
			log.Warn("hostcheck.known_hosts is empty, accepting any ssh host key")
		}
		prober.SSH = hostcheck.SSHDialer{Client: sshc}
	}

	return hostcheck.Options{
		Listen:   hc.Listen,
		Interval: hc.Interval,
		Jitter:   hc.Jitter,
		Workers:  hc.Workers,
		Timeout:  hc.Timeout,
		Prober:   prober,
	}
}
