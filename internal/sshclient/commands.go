package sshclient

import (
	"fmt"
	"regexp"
)

// AllowedCommand is one of the few read-only commands the prober may run.
type AllowedCommand struct {
	kind string
	arg  string
}

var plainPath = regexp.MustCompile(`^[A-Za-z0-9_./+-]+$`)

// Line renders the shell command.
func (c AllowedCommand) Line() (string, error) {
	switch c.kind {
	case "meminfo":
		return "cat /proc/meminfo", nil
	case "loadavg":
		return "cat /proc/loadavg", nil
	case "uptime":
		return "cat /proc/uptime", nil
	case "lookpath":
		if !plainPath.MatchString(c.arg) {
			return "", fmt.Errorf("refusing to look up %q", c.arg)
		}
		return "command -v " + c.arg, nil
	}
	return "", ErrUnsupported(c)
}

func (c AllowedCommand) String() string {
	line, err := c.Line()
	if err != nil {
		return "false"
	}
	return line
}

func CmdMeminfo() AllowedCommand { return AllowedCommand{kind: "meminfo"} }
func CmdLoadavg() AllowedCommand { return AllowedCommand{kind: "loadavg"} }
func CmdUptime() AllowedCommand  { return AllowedCommand{kind: "uptime"} }

// CmdLookPath checks that bin resolves to an executable on the host.
func CmdLookPath(bin string) AllowedCommand { return AllowedCommand{kind: "lookpath", arg: bin} }

func ErrUnsupported(cmd AllowedCommand) error {
	return fmt.Errorf("unsupported command kind=%q", cmd.kind)
}
