package hostlist

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrNoJobID = errors.New("job id not found in submit output")

type Route string

const (
	RouteLocal Route = "local"
	RouteQsub  Route = "qsub"
)

// JobNames fill the @NAME@, @STDOUT@ and @STDERR@ placeholders.
type JobNames struct {
	Name   string
	Stdout string
	Stderr string
}

// Broker is the message queue a local host takes its work from.
type Broker struct {
	URI   string `json:"uri" yaml:"uri"`
	Queue string `json:"queue,omitempty" yaml:"queue,omitempty"`
}

// Plan is everything a dispatcher needs to start one model run on a host.
type Plan struct {
	Host        string  `json:"host" yaml:"host"`
	DisplayName string  `json:"displayname,omitempty" yaml:"displayname,omitempty"`
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	Route       Route   `json:"route" yaml:"route"`
	Submit      string  `json:"submit,omitempty" yaml:"submit,omitempty"`
	Status      string  `json:"status,omitempty" yaml:"status,omitempty"`
	JobID       string  `json:"jobid,omitempty" yaml:"jobid,omitempty"`
	Prerun      string  `json:"prerun,omitempty" yaml:"prerun,omitempty"`
	Postrun     string  `json:"postrun,omitempty" yaml:"postrun,omitempty"`
	JobSh       string  `json:"job.sh,omitempty" yaml:"job.sh,omitempty"`
	Launcher    string  `json:"launcher,omitempty" yaml:"launcher,omitempty"`
	ScratchDir  string  `json:"scratchdir,omitempty" yaml:"scratchdir,omitempty"`
	Folder      string  `json:"folder,omitempty" yaml:"folder,omitempty"`
	Broker      *Broker `json:"broker,omitempty" yaml:"broker,omitempty"`

	jobID *regexp.Regexp
}

// Plan resolves host name for a run of model. Model may be empty.
func (l List) Plan(name, model string, job JobNames) (Plan, error) {
	h, ok := l.Get(name)
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownHost, name)
	}
	if err := validateHost(h); err != nil {
		return Plan{}, fmt.Errorf("host %s: %w", name, err)
	}

	mo := h.Models[model]
	p := Plan{
		Host:        name,
		DisplayName: h.DisplayName,
		Model:       model,
		Route:       RouteLocal,
		Prerun:      joinLines(h.Prerun, mo.Prerun),
		Postrun:     joinLines(mo.Postrun, h.Postrun),
		JobSh:       joinLines(h.JobSh, mo.JobSh),
		Launcher:    h.Launcher,
		ScratchDir:  h.ScratchDir,
		Folder:      h.Folder,
	}

	if h.Kind() == KindLocal {
		if h.RabbitMQURI != "" {
			p.Broker = &Broker{URI: h.RabbitMQURI, Queue: h.RabbitMQQueue}
		}
		return p, nil
	}

	p.Route = RouteQsub
	p.Submit = strings.NewReplacer(
		PlaceholderName, job.Name,
		PlaceholderStdout, job.Stdout,
		PlaceholderStderr, job.Stderr,
	).Replace(h.SubmitTemplate())
	p.Status = h.StatusTemplate()
	p.JobID = h.JobIDPattern()
	p.jobID = regexp.MustCompile(p.JobID)
	return p, nil
}

// StatusCommand returns the qstat command for jobID, or "" for local plans.
func (p Plan) StatusCommand(jobID string) string {
	if p.Route != RouteQsub {
		return ""
	}
	return strings.ReplaceAll(p.Status, PlaceholderJobID, jobID)
}

// ParseJobID extracts the scheduler job id from the output of the submit
// command.
func (p Plan) ParseJobID(output string) (string, error) {
	if p.Route != RouteQsub || p.jobID == nil {
		return "", fmt.Errorf("host %s does not submit through qsub", p.Host)
	}
	for _, line := range strings.Split(output, "\n") {
		if m := p.jobID.FindStringSubmatch(line); len(m) > 1 {
			return m[1], nil
		}
	}
	return "", ErrNoJobID
}

func joinLines(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
