package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-multierror"
)

var ErrInsecureSiteKey = errors.New("REST_AUTH_SITE_KEY is the shipped default")

// Validate reports every problem in c. In strict mode the default site key
// is refused.
func (c *Config) Validate(strict bool) error {
	var result *multierror.Error
	add := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if !c.DBBety.Configured() {
		add("db_bety: database is required")
	} else if err := c.DBBety.Validate(); err != nil {
		add("db_bety: %w", err)
	}
	if err := c.DBFia.Validate(); err != nil {
		add("db_fia: %w", err)
	}

	if c.Rbinary == "" {
		add("Rbinary: path is required")
	}
	if c.APIURL != "" {
		if _, err := url.Parse(c.APIURL); err != nil {
			add("api_url: %w", err)
		}
	}

	if err := c.Auth.Validate(); err != nil {
		add("authorization: %w", err)
	}
	if c.RestAuth.Stretches <= 0 {
		add("REST_AUTH_DIGEST_STRETCHES: %d must be positive", c.RestAuth.Stretches)
	}
	if c.RestAuth.SiteKey == "" {
		add("REST_AUTH_SITE_KEY: key is required")
	} else if strict && c.RestAuth.IsDefaultSiteKey() {
		result = multierror.Append(result, ErrInsecureSiteKey)
	}

	if c.PageSize <= 0 {
		add("pagesize: %d must be positive", c.PageSize)
	}

	if c.FQDN == "" {
		add("fqdn: name of the current machine is required")
	} else if _, ok := c.Hostlist.Get(c.FQDN); !ok {
		add("hostlist: no entry for local host %s", c.FQDN)
	}
	if err := c.Hostlist.Validate(); err != nil {
		add("hostlist: %w", err)
	}

	hc := c.HostCheck
	if hc.Workers <= 0 {
		add("hostcheck.workers: %d must be positive", hc.Workers)
	}
	if hc.Interval <= 0 {
		add("hostcheck.interval: %s must be positive", hc.Interval)
	}
	if hc.Timeout <= 0 {
		add("hostcheck.timeout: %s must be positive", hc.Timeout)
	}
	if hc.SSHPort <= 0 || hc.SSHPort > 65535 {
		add("hostcheck.ssh_port: %d is not a port", hc.SSHPort)
	}

	return result.ErrorOrNil()
}

// Warnings lists settings that are accepted but probably wrong.
func (c *Config) Warnings() []string {
	var out []string
	if c.RestAuth.IsDefaultSiteKey() {
		out = append(out, "REST_AUTH_SITE_KEY is the shipped default, set SECRET_KEY_BASE")
	}
	return out
}
