// Package database describes how to reach the BETY and FIA databases. It
// builds connection strings; it never opens a connection.
package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Params are the connection parameters of one database. Port is kept as the
// configured string so a malformed value can be reported instead of replaced.
type Params struct {
	Type     string `yaml:"type" json:"type"`
	Hostname string `yaml:"hostname" json:"hostname"`
	Port     string `yaml:"port,omitempty" json:"port,omitempty"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`
}

// DefaultBety returns the BETY parameters of the docker deployment.
func DefaultBety() Params {
	return Params{
		Type:     "pgsql",
		Hostname: "postgres",
		Port:     "5432",
		Username: "bety",
		Password: "bety",
		Database: "bety",
	}
}

// DefaultFia returns an unconfigured FIA database.
func DefaultFia() Params {
	return Params{Type: "pgsql"}
}

var drivers = map[string]string{
	"pgsql":    "postgres",
	"postgres": "postgres",
	"mysql":    "mysql",
}

var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
}

// Configured reports whether any of host, user or database is set. An empty
// FIA block means the integration is disabled.
func (p Params) Configured() bool {
	return p.Hostname != "" || p.Username != "" || p.Database != ""
}

// Partial reports a block that is configured but misses host, user or
// database.
func (p Params) Partial() bool {
	return p.Configured() && (p.Hostname == "" || p.Username == "" || p.Database == "")
}

// DriverName maps the PDO type onto a Go sql driver name.
func (p Params) DriverName() (string, error) {
	d, ok := drivers[strings.ToLower(p.Type)]
	if !ok {
		return "", fmt.Errorf("unsupported database type %q", p.Type)
	}
	return d, nil
}

// PortNumber parses Port, defaulting to the driver's standard port.
func (p Params) PortNumber() (int, error) {
	if p.Port == "" {
		d, err := p.DriverName()
		if err != nil {
			return 0, err
		}
		return defaultPorts[d], nil
	}
	n, err := strconv.Atoi(p.Port)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", p.Port)
	}
	return n, nil
}

// Validate checks a configured block. Unconfigured blocks are valid.
func (p Params) Validate() error {
	if !p.Configured() {
		return nil
	}
	if p.Partial() {
		return fmt.Errorf("hostname, username and database must all be set")
	}
	if _, err := p.DriverName(); err != nil {
		return err
	}
	if _, err := p.PortNumber(); err != nil {
		return err
	}
	return nil
}

// DSN renders a libpq keyword/value connection string for postgres, or a
// go-sql-driver style DSN for mysql.
func (p Params) DSN() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if !p.Configured() {
		return "", fmt.Errorf("database not configured")
	}
	driver, _ := p.DriverName()
	port, _ := p.PortNumber()

	if driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s)/%s", p.Username, p.Password,
			net.JoinHostPort(p.Hostname, strconv.Itoa(port)), p.Database), nil
	}

	pairs := [][2]string{
		{"host", p.Hostname},
		{"port", strconv.Itoa(port)},
		{"user", p.Username},
		{"password", p.Password},
		{"dbname", p.Database},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+quote(kv[1]))
	}
	return strings.Join(parts, " "), nil
}

// URL renders the parameters as a driver URL.
func (p Params) URL() (*url.URL, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.Configured() {
		return nil, fmt.Errorf("database not configured")
	}
	driver, _ := p.DriverName()
	port, _ := p.PortNumber()
	u := &url.URL{
		Scheme: driver,
		Host:   net.JoinHostPort(p.Hostname, strconv.Itoa(port)),
		Path:   "/" + p.Database,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	} else {
		u.User = url.User(p.Username)
	}
	return u, nil
}

// quote escapes a libpq value when it contains spaces, quotes or backslashes.
func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
