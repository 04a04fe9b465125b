package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tastythames/pecan-config/internal/hostlist"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Options control Load. The zero value reads no file, uses the process
// environment and applies the PECAN_ overlay.
type Options struct {
	// Path of an optional YAML file. A missing file is an error.
	Path string
	Fs   afero.Fs
	// Lookup resolves the legacy variables (PGHOST, BETYUSER, ...).
	Lookup LookupFunc
	// SkipOverlay disables the PECAN_ envconfig overlay. The overlay always
	// reads the process environment and only ever PECAN_ prefixed names; a
	// variable set to the empty string is applied as an empty value.
	SkipOverlay bool
	// Strict turns the insecure default site key into an error.
	Strict bool
}

func (o Options) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}

func (o Options) getenv(key string) string {
	lookup := o.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(key)
	return v
}

// Load resolves the configuration. Precedence, lowest first: literal
// defaults, the YAML file, the legacy environment variables, the PECAN_
// overlay. A hostlist given in the file replaces the default table.
func Load(opts Options) (*Config, error) {
	c := Default(DefaultName, DefaultName)
	c.Hostlist = hostlist.List{}

	if opts.Path != "" {
		if err := decodeFile(opts.fs(), opts.Path, &c); err != nil {
			return nil, err
		}
	}
	fileHosts := c.Hostlist.Len() > 0

	rabbitURI, err := applyLegacyEnv(&c, opts)
	if err != nil {
		return nil, err
	}

	if !opts.SkipOverlay {
		if err := envconfig.Process(EnvPrefix, &c); err != nil {
			return nil, fmt.Errorf("failed to process config env vars: %w", err)
		}
	}

	if !fileHosts {
		uri := DefaultRabbitMQURI
		if rabbitURI != "" {
			uri = rabbitURI
		}
		c.Hostlist = DefaultHostlist(c.Name, c.FQDN, uri)
	}
	ensureLocalHost(&c, rabbitURI)

	if c.SSHTunnel == "" {
		dir := "."
		if opts.Path != "" {
			dir = filepath.Dir(opts.Path)
		}
		c.SSHTunnel = filepath.Join(dir, tunnelScript)
	}

	if err := c.Validate(opts.Strict); err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		log.Warn(w)
	}
	return &c, nil
}

func decodeFile(fs afero.Fs, path string, c *Config) error {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("couldn't unmarshal config %s: %w", path, err)
	}
	return nil
}

// applyLegacyEnv applies the variables the docker image has always honoured.
// Unset and empty variables leave the value alone. It returns RABBITMQ_URI,
// which only applies to the local host entry.
func applyLegacyEnv(c *Config, opts Options) (string, error) {
	set := func(dst *string, key string) {
		if v := opts.getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DBBety.Hostname, "PGHOST")
	set(&c.DBBety.Username, "BETYUSER")
	set(&c.DBBety.Password, "BETYPASSWORD")
	set(&c.DBBety.Database, "BETYDATABASE")
	set(&c.RestAuth.SiteKey, "SECRET_KEY_BASE")
	set(&c.Name, "NAME")
	set(&c.FQDN, "FQDN")

	if v := opts.getenv("PGPORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return "", fmt.Errorf("PGPORT: %q is not a port number", v)
		}
		c.DBBety.Port = v
	}
	return opts.getenv("RABBITMQ_URI"), nil
}

// ensureLocalHost makes sure the hostlist has an entry keyed by the
// configured FQDN.
func ensureLocalHost(c *Config, rabbitURI string) {
	h, ok := c.Hostlist.Get(c.FQDN)
	changed := !ok
	if h.DisplayName == "" {
		h.DisplayName = c.Name
		changed = true
	}
	if rabbitURI != "" && h.RabbitMQURI != rabbitURI {
		h.RabbitMQURI = rabbitURI
		changed = true
	}
	if changed {
		c.Hostlist = c.Hostlist.With(c.FQDN, h)
	}
}
