package hostlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanQueued(t *testing.T) {
	l := parse(t, sample)
	p, err := l.Plan("geo.bu.edu", "ED2", JobNames{
		Name:   "PEcAn-ED2-1",
		Stdout: "/out/stdout.log",
		Stderr: "/out/stderr.log",
	})
	require.NoError(t, err)

	assert.Equal(t, RouteQsub, p.Route)
	assert.Equal(t, "qsub -V -N PEcAn-ED2-1 -o /out/stdout.log -e /out/stderr.log -S /bin/bash", p.Submit)
	assert.Equal(t, "module load udunits R/R-3.0.0_gnu-4.4.6\nmodule load hdf5", p.Prerun)
	assert.Equal(t, "sleep 60", p.Postrun)
	assert.Nil(t, p.Broker)

	assert.Equal(t, "qstat -j 4242 || echo DONE", p.StatusCommand("4242"))

	id, err := p.ParseJobID("Your job 4242 (\"PEcAn-ED2-1\") has been submitted\n")
	require.NoError(t, err)
	assert.Equal(t, "4242", id)

	_, err = p.ParseJobID("qsub: error")
	assert.ErrorIs(t, err, ErrNoJobID)
}

func TestPlanModelWithoutOverrides(t *testing.T) {
	l := parse(t, sample)
	p, err := l.Plan("geo.bu.edu", "SIPNET", JobNames{})
	require.NoError(t, err)
	assert.Equal(t, "module load udunits R/R-3.0.0_gnu-4.4.6", p.Prerun)
}

func TestPlanLocalNeverSubmits(t *testing.T) {
	l := parse(t, sample)
	p, err := l.Plan("docker", "SIPNET", JobNames{Name: "x"})
	require.NoError(t, err)

	assert.Equal(t, RouteLocal, p.Route)
	assert.Empty(t, p.Submit)
	assert.Empty(t, p.StatusCommand("1"))
	require.NotNil(t, p.Broker)
	assert.Equal(t, "pecan", p.Broker.Queue)

	_, err = p.ParseJobID("Your job 1 .")
	assert.Error(t, err)
}

func TestPlanPostrunNesting(t *testing.T) {
	l := New(map[string]Host{
		"h": {
			Qsub:    Qsub(""),
			Prerun:  "host-pre",
			Postrun: "host-post",
			Models:  map[string]ModelOptions{"ED2": {Prerun: "model-pre", Postrun: "model-post"}},
		},
	})
	p, err := l.Plan("h", "ED2", JobNames{})
	require.NoError(t, err)
	assert.Equal(t, "host-pre\nmodel-pre", p.Prerun)
	assert.Equal(t, "model-post\nhost-post", p.Postrun)
	assert.Equal(t, DefaultJobID, p.JobID)
}

func TestPlanErrors(t *testing.T) {
	l := New(map[string]Host{"bad": {Qsub: Qsub("sbatch")}})

	_, err := l.Plan("missing", "", JobNames{})
	assert.True(t, errors.Is(err, ErrUnknownHost))

	_, err = l.Plan("bad", "", JobNames{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobid is required")
}
