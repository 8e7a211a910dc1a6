package slogext_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/monoverse/monoverse/pkg/slogext"
	"gotest.tools/v3/assert"
)

func TestCapturedLoggerWritesStructuredLine(t *testing.T) {
	log, buf := slogext.NewCapturedLogger()
	log.Info("hello world")
	assert.Equal(t, buf.String(), "INFO hello world\n")
}

func TestSilentLoggerDiscardsEverything(t *testing.T) {
	log := slogext.NewSilent()
	log.Info("should not appear")
	log.WithError(errors.New("boom")).Errorf("also %s", "hidden")
	// Nothing to assert on output; this test documents that calling
	// every method on the silent variant never panics.
}

func TestStreamLoggerFormatsKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	log := slogext.NewStream(&buf)
	log.Info("starting", "project", "core")
	assert.Equal(t, buf.String(), "INFO starting project=core\n")
}

func TestStreamLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slogext.NewStream(&buf)
	log.SetLevel(slogext.WarnLevel)
	log.Info("hidden")
	log.Warn("shown")
	assert.Equal(t, buf.String(), "WARN shown\n")
}

func TestStreamLoggerWithCarriesPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := slogext.NewStream(&buf).With("request", "abc")
	log.Info("done")
	assert.Equal(t, buf.String(), "INFO done request=abc\n")
}
