// Package hostlist describes the execution targets a workflow can be sent
// to. A host either runs jobs itself or hands them to a batch scheduler
// through qsub.
package hostlist

import (
	"path"
	"regexp"
	"strings"
)

// Templates used when a host sets qsub to the empty string.
const (
	DefaultQsub  = "qsub -V -N @NAME@ -o @STDOUT@ -e @STDERR@ -S /bin/bash"
	DefaultJobID = "Your job ([0-9]+) .*"
	DefaultQstat = "qstat -j @JOBID@ || echo DONE"
)

// Placeholders substituted into the qsub and qstat templates.
const (
	PlaceholderName   = "@NAME@"
	PlaceholderStdout = "@STDOUT@"
	PlaceholderStderr = "@STDERR@"
	PlaceholderJobID  = "@JOBID@"
)

type Kind string

const (
	KindLocal  Kind = "local"
	KindQueued Kind = "queued"
)

// ModelOptions are extra job settings applied when a given model type runs
// on the host.
type ModelOptions struct {
	Prerun  string `yaml:"prerun,omitempty" json:"prerun,omitempty"`
	Postrun string `yaml:"postrun,omitempty" json:"postrun,omitempty"`
	JobSh   string `yaml:"job.sh,omitempty" json:"job.sh,omitempty"`
}

// Host is one entry of the host table. Every field is optional; a nil Qsub
// means jobs run on the host itself, an empty one means qsub with the
// default templates.
type Host struct {
	DisplayName   string                  `yaml:"displayname,omitempty" json:"displayname,omitempty"`
	RabbitMQURI   string                  `yaml:"rabbitmq_uri,omitempty" json:"rabbitmq_uri,omitempty"`
	RabbitMQQueue string                  `yaml:"rabbitmq_queue,omitempty" json:"rabbitmq_queue,omitempty"`
	Qsub          *string                 `yaml:"qsub,omitempty" json:"qsub,omitempty"`
	JobID         string                  `yaml:"jobid,omitempty" json:"jobid,omitempty"`
	Qstat         string                  `yaml:"qstat,omitempty" json:"qstat,omitempty"`
	Launcher      string                  `yaml:"launcher,omitempty" json:"launcher,omitempty"`
	JobSh         string                  `yaml:"job.sh,omitempty" json:"job.sh,omitempty"` // deprecated
	Prerun        string                  `yaml:"prerun,omitempty" json:"prerun,omitempty"`
	Postrun       string                  `yaml:"postrun,omitempty" json:"postrun,omitempty"`
	Folder        string                  `yaml:"folder,omitempty" json:"folder,omitempty"`
	Models        map[string]ModelOptions `yaml:"models,omitempty" json:"models,omitempty"`
	ScratchDir    string                  `yaml:"scratchdir,omitempty" json:"scratchdir,omitempty"`
}

// Qsub returns a pointer to template, for building hosts in code.
func Qsub(template string) *string {
	return &template
}

// Kind is derived from the presence of qsub only.
func (h Host) Kind() Kind {
	if h.Qsub == nil {
		return KindLocal
	}
	return KindQueued
}

// SubmitTemplate returns the qsub template with defaults applied. It is empty
// for local hosts.
func (h Host) SubmitTemplate() string {
	if h.Qsub == nil {
		return ""
	}
	if *h.Qsub == "" {
		return DefaultQsub
	}
	return *h.Qsub
}

func (h Host) usesDefaultQsub() bool {
	return h.Qsub != nil && *h.Qsub == ""
}

// JobIDPattern returns the job id regular expression with defaults applied.
func (h Host) JobIDPattern() string {
	if h.JobID == "" && h.usesDefaultQsub() {
		return DefaultJobID
	}
	return h.JobID
}

// StatusTemplate returns the qstat template with defaults applied.
func (h Host) StatusTemplate() string {
	if h.Qstat == "" && h.usesDefaultQsub() {
		return DefaultQstat
	}
	return h.Qstat
}

// RemoteFolder is the run folder of a workflow for user on this host, or ""
// when the host has no folder.
func (h Host) RemoteFolder(user, workflowID string) string {
	if h.Folder == "" {
		return ""
	}
	return path.Join(h.Folder, user, "PEcAn_"+workflowID)
}

var binaryName = regexp.MustCompile(`^[A-Za-z0-9_./+-]+$`)

// SchedulerBinaries returns the commands the qsub and qstat templates start
// with. Words that do not look like a plain path are skipped.
func (h Host) SchedulerBinaries() []string {
	if h.Kind() != KindQueued {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, tmpl := range []string{h.SubmitTemplate(), h.StatusTemplate()} {
		fields := strings.Fields(tmpl)
		if len(fields) == 0 {
			continue
		}
		bin := fields[0]
		if !binaryName.MatchString(bin) || seen[bin] {
			continue
		}
		seen[bin] = true
		out = append(out, bin)
	}
	return out
}

func (h Host) clone() Host {
	c := h
	if h.Qsub != nil {
		c.Qsub = Qsub(*h.Qsub)
	}
	if h.Models != nil {
		c.Models = make(map[string]ModelOptions, len(h.Models))
		for k, v := range h.Models {
			c.Models[k] = v
		}
	}
	return c
}
