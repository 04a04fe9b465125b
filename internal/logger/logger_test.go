package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	textFormatter, ok := NewFormatter("").(*logrus.TextFormatter)
	assert.NotNil(t, textFormatter)
	assert.True(t, ok)

	jsonFormatter, ok := NewFormatter("JSON").(*logrus.JSONFormatter)
	assert.NotNil(t, jsonFormatter)
	assert.True(t, ok)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
		"error":   logrus.ErrorLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"debug":   logrus.DebugLevel,
		"trace":   logrus.TraceLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestTeeToFile(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevLevel := log.Out, log.Level
	defer func() {
		log.SetOutput(prevOut)
		log.SetLevel(prevLevel)
	}()
	log.SetOutput(&buf)
	SetLevel("info")

	path := filepath.Join(t.TempDir(), "betydb.log")
	closer, err := TeeToFile(path)
	require.NoError(t, err)

	Get().WithField("host", "geo.bu.edu").Info("probe done")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "probe done")
	assert.Contains(t, buf.String(), "host=geo.bu.edu")
	assert.Equal(t, &buf, log.Out)
}
