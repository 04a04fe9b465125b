// Package hostcheck probes the configured execution hosts and serves the
// results. It never submits work to them.
package hostcheck

import (
	"github.com/tastythames/pecan-config/internal/hostlist"
	"github.com/tastythames/pecan-config/internal/scheduler"
)

// Labels are attached to every sample of a host.
func Labels(name string, h hostlist.Host) map[string]string {
	labels := map[string]string{"kind": string(h.Kind())}
	if h.DisplayName != "" {
		labels["displayname"] = h.DisplayName
	}
	return labels
}

// Jobs turns the host table into probe jobs. Queued hosts are checked over
// SSH, local hosts with a broker through AMQP, other local hosts are not
// probed.
func Jobs(list hostlist.List) []scheduler.Job {
	var jobs []scheduler.Job
	list.Each(func(name string, h hostlist.Host) {
		job := scheduler.Job{Host: name, Labels: Labels(name, h)}
		switch {
		case h.Kind() == hostlist.KindQueued:
			job.Probe = scheduler.ProbeSSH
			job.Binaries = h.SchedulerBinaries()
		case h.RabbitMQURI != "":
			job.Probe = scheduler.ProbeBroker
			job.BrokerURI = h.RabbitMQURI
			job.Queue = h.RabbitMQQueue
		default:
			return
		}
		jobs = append(jobs, job)
	})
	return jobs
}
