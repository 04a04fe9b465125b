package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastythames/pecan-config/internal/config"
)

func run(t *testing.T, fs afero.Fs, vars map[string]string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	lookup := func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
	app := newApp(&out, fs, lookup)
	app.Terminate(nil)
	_, err := app.Parse(append([]string{"--no-env-overlay"}, args...))
	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), nil, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration ok: 2 hosts, local host docker")
	assert.Contains(t, out, "FIA database not configured")
	assert.Contains(t, out, "warning: REST_AUTH_SITE_KEY")

	_, err = run(t, afero.NewMemMapFs(), nil, "--strict", "check")
	assert.ErrorIs(t, err, config.ErrInsecureSiteKey)
}

func TestCheckBadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.yml", []byte("pagesize: 0\nmin_run_level: 12\n"), 0o644))
	_, err := run(t, fs, nil, "--config", "/bad.yml", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagesize: 0")
	assert.Contains(t, err.Error(), "min_run_level: 12")
}

func TestDumpRedacts(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), map[string]string{"BETYPASSWORD": "illinois"}, "dump")
	require.NoError(t, err)
	assert.NotContains(t, out, "illinois")
	assert.Contains(t, out, "********")

	out, err = run(t, afero.NewMemMapFs(), map[string]string{"BETYPASSWORD": "illinois"}, "dump", "--show-secrets", "--format", "json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "illinois", doc["db_bety"].(map[string]interface{})["password"])
}

func TestWriteDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := run(t, fs, map[string]string{"PGHOST": "db.example.com"}, "write-default", "/etc/pecan.yml")
	require.NoError(t, err)

	b, err := afero.ReadFile(fs, "/etc/pecan.yml")
	require.NoError(t, err)
	assert.Contains(t, string(b), "hostname: db.example.com")

	out, err := run(t, fs, nil, "--config", "/etc/pecan.yml", "hosts")
	require.NoError(t, err)
	assert.Contains(t, out, "docker *")
	assert.Contains(t, out, "geo.bu.edu")
	assert.Contains(t, out, "queued")
}

func TestPlan(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), nil, "plan", "geo.bu.edu", "--model", "ED2", "--name", "run-1", "--jobid", "77")
	require.NoError(t, err)
	assert.Contains(t, out, "route: qsub")
	assert.Contains(t, out, "submit: qsub -V -N run-1 -o stdout.log -e stderr.log -S /bin/bash")
	assert.Contains(t, out, "module load hdf5")
	assert.Contains(t, out, "status_command: qstat -j 77 || echo DONE")

	out, err = run(t, afero.NewMemMapFs(), nil, "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "route: local")
	assert.NotContains(t, out, "submit:")
	assert.Contains(t, out, "guest:xxxxx@rabbitmq")

	_, err = run(t, afero.NewMemMapFs(), nil, "plan", "nowhere.example.org")
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), nil, "digest", "carya", "c0ffee")
	require.NoError(t, err)
	assert.Equal(t, "b247ebfed803f4ffefbd33b9b0c8803fe63805f8\n", out)
}

func TestServiceOptions(t *testing.T) {
	cfg := config.Default("docker", "docker")
	cfg.HostCheck.Workers = 3
	cfg.HostCheck.Interval = time.Minute

	opts := serviceOptions(&cfg)
	assert.Equal(t, ":9222", opts.Listen)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, time.Minute, opts.Interval)
	require.NotNil(t, opts.Prober)
}
