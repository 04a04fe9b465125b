package sshclient

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseUptimeSeconds reads /proc/uptime: "<uptime> <idle>".
func ParseUptimeSeconds(out string) (float64, error) {
	return firstField(out, "uptime")
}

// ParseLoad1 reads the one minute load from /proc/loadavg.
func ParseLoad1(out string) (float64, error) {
	return firstField(out, "loadavg")
}

// ParseMeminfo returns MemTotal and MemAvailable in bytes.
func ParseMeminfo(out string) (totalBytes, availBytes float64, err error) {
	total, avail := -1.0, -1.0
	for _, ln := range strings.Split(out, "\n") {
		fields := strings.Fields(ln)
		if len(fields) < 2 {
			continue
		}
		v, perr := strconv.ParseFloat(fields[1], 64)
		if perr != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = v
		case "MemAvailable:":
			avail = v
		}
	}
	if total <= 0 || avail < 0 {
		return 0, 0, fmt.Errorf("missing MemTotal/MemAvailable")
	}
	return total * 1024, avail * 1024, nil
}

func firstField(out, what string) (float64, error) {
	fields := strings.Fields(out)
	if len(fields) < 1 {
		return 0, fmt.Errorf("bad %s: %q", what, out)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", what, err)
	}
	return v, nil
}
