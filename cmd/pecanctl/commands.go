package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	kingpin "github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/tastythames/pecan-config/internal/config"
	"github.com/tastythames/pecan-config/internal/hostlist"
)

func addCheck(app *kingpin.Application, c *cli) {
	cmd := app.Command("check", "Load and validate the configuration.")
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "configuration ok: %d hosts, local host %s\n", cfg.Hostlist.Len(), cfg.FQDN)
		if !cfg.DBFia.Configured() {
			fmt.Fprintln(c.out, "FIA database not configured, feature disabled")
		}
		for _, w := range cfg.Warnings() {
			fmt.Fprintf(c.out, "warning: %s\n", w)
		}
		return nil
	})
}

func addDump(app *kingpin.Application, c *cli) {
	cmd := app.Command("dump", "Print the resolved configuration.")
	format := cmd.Flag("format", "Output format.").Default("yaml").Enum("yaml", "json")
	secrets := cmd.Flag("show-secrets", "Do not mask passwords and keys.").Bool()
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		if !*secrets {
			cfg = cfg.Redacted()
		}
		if *format == "json" {
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}
		b, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = c.out.Write(b)
		return err
	})
}

func addWriteDefault(app *kingpin.Application, c *cli) {
	cmd := app.Command("write-default", "Write the default configuration, resolved against the environment.")
	path := cmd.Arg("path", "Destination file.").Required().String()
	cmd.Action(func(*kingpin.ParseContext) error {
		if _, err := config.WriteDefault(c.fs, *path, c.options()); err != nil {
			return err
		}
		log.WithField("path", *path).Info("wrote default configuration")
		return nil
	})
}

func addHosts(app *kingpin.Application, c *cli) {
	cmd := app.Command("hosts", "List the execution hosts.")
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOST\tNAME\tKIND\tBROKER")
		cfg.Hostlist.Each(func(name string, h hostlist.Host) {
			broker := "-"
			if h.RabbitMQURI != "" {
				broker = h.RabbitMQQueue
			}
			marker := ""
			if name == cfg.FQDN {
				marker = " *"
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", name, marker, h.DisplayName, h.Kind(), broker)
		})
		return tw.Flush()
	})
}

func addPlan(app *kingpin.Application, c *cli) {
	cmd := app.Command("plan", "Show how a run would be started on a host.")
	host := cmd.Arg("host", "Host identifier, defaults to the local host.").String()
	model := cmd.Flag("model", "Model type, e.g. ED2.").String()
	name := cmd.Flag("name", "Job name for @NAME@.").Default("PEcAn").String()
	stdout := cmd.Flag("stdout", "Path for @STDOUT@.").Default("stdout.log").String()
	stderr := cmd.Flag("stderr", "Path for @STDERR@.").Default("stderr.log").String()
	jobID := cmd.Flag("jobid", "Show the status command for this job id.").String()
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		target := *host
		if target == "" {
			target = cfg.FQDN
		}
		p, err := cfg.Hostlist.Plan(target, *model, hostlist.JobNames{Name: *name, Stdout: *stdout, Stderr: *stderr})
		if err != nil {
			return err
		}
		if p.Broker != nil {
			p.Broker.URI = config.RedactURI(p.Broker.URI)
		}

		out := struct {
			hostlist.Plan `yaml:",inline"`
			StatusCommand string `yaml:"status_command,omitempty"`
		}{Plan: p}
		if *jobID != "" {
			out.StatusCommand = p.StatusCommand(*jobID)
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = c.out.Write(b)
		return err
	})
}

func addDigest(app *kingpin.Application, c *cli) {
	cmd := app.Command("digest", "Print the REST auth password digest.")
	password := cmd.Arg("password", "Clear text password.").Required().String()
	salt := cmd.Arg("salt", "User salt.").Required().String()
	cmd.Action(func(*kingpin.ParseContext) error {
		cfg, err := c.load()
		if err != nil {
			return err
		}
		d, err := cfg.RestAuth.PasswordDigest(*password, *salt)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, strings.ToLower(d))
		return nil
	})
}
