package main

import (
	"fmt"
	"io"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"

	"github.com/tastythames/pecan-config/internal/config"
	logger "github.com/tastythames/pecan-config/internal/logger"
)

var log = logger.Get()

const (
	appName = "pecanctl"
	appDesc = "Inspect, check and exercise the PEcAn web configuration."
)

// cli holds the global flags shared by every command.
type cli struct {
	out    io.Writer
	fs     afero.Fs
	lookup config.LookupFunc

	configPath *string
	strict     *bool
	logLevel   *string
	noOverlay  *bool
}

func (c *cli) load() (*config.Config, error) {
	logger.SetLevel(*c.logLevel)
	return config.Load(c.options())
}

func (c *cli) options() config.Options {
	return config.Options{
		Path:        *c.configPath,
		Fs:          c.fs,
		Lookup:      c.lookup,
		SkipOverlay: *c.noOverlay,
		Strict:      *c.strict,
	}
}

func newApp(out io.Writer, fs afero.Fs, lookup config.LookupFunc) *kingpin.Application {
	app := kingpin.New(appName, appDesc)
	app.Writer(out)
	app.UsageWriter(out)
	app.ErrorWriter(out)

	c := &cli{out: out, fs: fs, lookup: lookup}
	c.configPath = app.Flag("config", "YAML configuration file.").Short('c').Envar("PECAN_CONFIG").String()
	c.strict = app.Flag("strict", "Refuse insecure defaults such as the shipped site key.").Bool()
	c.logLevel = app.Flag("log-level", "Log level: error, warn, info, debug.").String()
	c.noOverlay = app.Flag("no-env-overlay", "Ignore PECAN_* environment overrides.").Bool()

	addCheck(app, c)
	addDump(app, c)
	addWriteDefault(app, c)
	addHosts(app, c)
	addPlan(app, c)
	addDigest(app, c)
	addServe(app, c)
	return app
}

func main() {
	app := newApp(os.Stdout, afero.NewOsFs(), os.LookupEnv)
	if _, err := app.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
