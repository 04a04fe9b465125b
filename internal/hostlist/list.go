package hostlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	amqp "github.com/rabbitmq/amqp091-go"
	"gopkg.in/yaml.v3"
)

var ErrUnknownHost = errors.New("unknown host")

// List maps a host FQDN to its descriptor. A List is never modified after it
// is built; accessors hand out copies.
type List struct {
	hosts map[string]Host
}

// New builds a List from hosts.
func New(hosts map[string]Host) List {
	l := List{hosts: make(map[string]Host, len(hosts))}
	for name, h := range hosts {
		l.hosts[name] = h.clone()
	}
	return l
}

// With returns a copy of l with name set to h.
func (l List) With(name string, h Host) List {
	out := New(l.hosts)
	out.hosts[name] = h.clone()
	return out
}

func (l List) Len() int { return len(l.hosts) }

func (l List) Get(name string) (Host, bool) {
	h, ok := l.hosts[name]
	if !ok {
		return Host{}, false
	}
	return h.clone(), true
}

// Names returns the host identifiers in sorted order.
func (l List) Names() []string {
	names := make([]string, 0, len(l.hosts))
	for name := range l.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every host in name order.
func (l List) Each(fn func(name string, h Host)) {
	for _, name := range l.Names() {
		fn(name, l.hosts[name].clone())
	}
}

// Map returns a copy of the underlying table.
func (l List) Map() map[string]Host {
	out := make(map[string]Host, len(l.hosts))
	for name, h := range l.hosts {
		out[name] = h.clone()
	}
	return out
}

func (l List) MarshalYAML() (interface{}, error) {
	if l.hosts == nil {
		return map[string]Host{}, nil
	}
	return l.hosts, nil
}

// UnmarshalYAML rejects duplicate host identifiers through yaml.v3's own
// mapping key check.
func (l *List) UnmarshalYAML(n *yaml.Node) error {
	var hosts map[string]Host
	if err := n.Decode(&hosts); err != nil {
		return err
	}
	for name := range hosts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("hostlist: empty host name")
		}
	}
	*l = New(hosts)
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	if l.hosts == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.hosts)
}

func (l *List) UnmarshalJSON(b []byte) error {
	var hosts map[string]Host
	if err := json.Unmarshal(b, &hosts); err != nil {
		return err
	}
	*l = New(hosts)
	return nil
}

// Validate checks every host and returns all problems found.
func (l List) Validate() error {
	var result *multierror.Error
	for _, name := range l.Names() {
		if err := validateHost(l.hosts[name]); err != nil {
			result = multierror.Append(result, fmt.Errorf("host %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

func validateHost(h Host) error {
	var result *multierror.Error

	if h.RabbitMQURI != "" {
		if _, err := amqp.ParseURI(h.RabbitMQURI); err != nil {
			result = multierror.Append(result, fmt.Errorf("rabbitmq_uri: %w", err))
		}
	}

	if h.Kind() != KindQueued {
		return result.ErrorOrNil()
	}

	if pattern := h.JobIDPattern(); pattern == "" {
		result = multierror.Append(result, errors.New("jobid is required when qsub is set"))
	} else if re, err := regexp.Compile(pattern); err != nil {
		result = multierror.Append(result, fmt.Errorf("jobid: %w", err))
	} else if re.NumSubexp() < 1 {
		result = multierror.Append(result, fmt.Errorf("jobid: %q has no capture group", pattern))
	}

	if status := h.StatusTemplate(); status == "" {
		result = multierror.Append(result, errors.New("qstat is required when qsub is set"))
	} else if !strings.Contains(status, PlaceholderJobID) {
		result = multierror.Append(result, fmt.Errorf("qstat: %q does not reference %s", status, PlaceholderJobID))
	}

	return result.ErrorOrNil()
}
