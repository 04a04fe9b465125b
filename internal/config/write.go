package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tastythames/pecan-config/internal/hostlist"
)

const mask = "********"

// Marshal renders c as YAML that Load reads back to an equal Config.
func Marshal(c *Config) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return b, nil
}

// Write stores c at path on fs.
func Write(fs afero.Fs, path string, c *Config) error {
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, b, 0o644)
}

// WriteDefault resolves the defaults against the environment and writes
// them to path.
func WriteDefault(fs afero.Fs, path string, opts Options) (*Config, error) {
	opts.Path = ""
	c, err := Load(opts)
	if err != nil {
		return nil, err
	}
	if err := Write(fs, path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Redacted returns a copy of c with secrets masked.
func (c *Config) Redacted() *Config {
	out := *c
	maskValue(&out.DBBety.Password)
	maskValue(&out.DBFia.Password)
	maskValue(&out.RestAuth.SiteKey)
	maskValue(&out.Sync.ClientSecret)
	maskValue(&out.Sync.AuthToken)

	hosts := c.Hostlist.Map()
	for name, h := range hosts {
		if h.RabbitMQURI == "" {
			continue
		}
		h.RabbitMQURI = RedactURI(h.RabbitMQURI)
		hosts[name] = h
	}
	out.Hostlist = hostlist.New(hosts)
	return &out
}

// RedactURI hides the password of a broker URI.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return mask
	}
	return u.Redacted()
}

func maskValue(s *string) {
	if *s != "" {
		*s = mask
	}
}
