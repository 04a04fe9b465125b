// Package access holds the authorization knobs of the web interface: numeric
// privilege levels, the run/delete thresholds and the password digest shared
// with the Rails side of BETY.
package access

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Level is a numeric privilege tier. Lower is more privileged.
type Level int

const (
	LevelNobody    Level = 0
	LevelAdmin     Level = 1
	LevelManager   Level = 2
	LevelCreator   Level = 3
	LevelViewer    Level = 4
	LevelAnonymous Level = 99
)

func (l Level) String() string {
	switch l {
	case LevelNobody:
		return "nobody"
	case LevelAdmin:
		return "administrator"
	case LevelManager:
		return "manager"
	case LevelCreator:
		return "creator"
	case LevelViewer:
		return "viewer"
	case LevelAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Named reports whether l is one of the user levels 1..4.
func (l Level) Named() bool {
	return l >= LevelAdmin && l <= LevelViewer
}

// Policy gates run and delete actions. A threshold of 0 lets nobody through.
type Policy struct {
	Authentication bool  `yaml:"authentication" json:"authentication"`
	MinRunLevel    Level `yaml:"min_run_level" json:"min_run_level" split_words:"true"`
	MinDeleteLevel Level `yaml:"min_delete_level" json:"min_delete_level" split_words:"true"`
	AnonymousLevel Level `yaml:"anonymous_level" json:"anonymous_level" split_words:"true"`
	AnonymousPage  Level `yaml:"anonymous_page" json:"anonymous_page" split_words:"true"`
}

// DefaultPolicy mirrors the stock web configuration.
func DefaultPolicy() Policy {
	return Policy{
		Authentication: false,
		MinRunLevel:    LevelManager,
		MinDeleteLevel: LevelManager,
		AnonymousLevel: LevelAnonymous,
		AnonymousPage:  LevelAnonymous,
	}
}

func permitted(level, min Level) bool {
	return level > LevelNobody && level <= min
}

// CanRun reports whether a user at level may launch workflows.
func (p Policy) CanRun(level Level) bool {
	if !p.Authentication {
		return true
	}
	return permitted(level, p.MinRunLevel)
}

// CanDelete reports whether a user at level may delete records.
func (p Policy) CanDelete(level Level) bool {
	if !p.Authentication {
		return true
	}
	return permitted(level, p.MinDeleteLevel)
}

// PageLevel returns the level a request is served at: the session level when
// logged in, otherwise the anonymous page level.
func (p Policy) PageLevel(session *Level) Level {
	if session != nil {
		return *session
	}
	return p.AnonymousPage
}

// RecordLevel is PageLevel for record access, falling back to the anonymous
// access level.
func (p Policy) RecordLevel(session *Level) Level {
	if session != nil {
		return *session
	}
	return p.AnonymousLevel
}

// CanView reports whether level satisfies a page that requires required.
// Level 0 never does while authentication is on.
func (p Policy) CanView(level, required Level) bool {
	if !p.Authentication {
		return true
	}
	return permitted(level, required)
}

// Validate checks the thresholds and that anonymous access ranks below every
// named level.
func (p Policy) Validate() error {
	var result *multierror.Error
	for _, t := range []struct {
		name  string
		level Level
	}{
		{"min_run_level", p.MinRunLevel},
		{"min_delete_level", p.MinDeleteLevel},
	} {
		if t.level != LevelNobody && !t.level.Named() && t.level != LevelAnonymous {
			result = multierror.Append(result, fmt.Errorf("%s: %d is not a privilege level", t.name, int(t.level)))
		}
	}
	for _, t := range []struct {
		name  string
		level Level
	}{
		{"anonymous_level", p.AnonymousLevel},
		{"anonymous_page", p.AnonymousPage},
	} {
		if t.level <= LevelViewer {
			result = multierror.Append(result, fmt.Errorf("%s: %d must be greater than %d", t.name, int(t.level), int(LevelViewer)))
		}
	}
	return result.ErrorOrNil()
}
