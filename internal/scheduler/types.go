package scheduler

// Probe selects how a host is checked.
type Probe string

const (
	ProbeSSH    Probe = "ssh"    // queued hosts: log in and look for qsub/qstat
	ProbeBroker Probe = "broker" // local hosts fed through RabbitMQ
)

type Job struct {
	Host   string
	Labels map[string]string
	Probe  Probe

	// ssh
	Binaries []string

	// broker
	BrokerURI string
	Queue     string
}
