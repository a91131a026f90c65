package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitReconfiguresDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: LevelInfo, Output: &buf, Service: "test"})
	Debug("hidden at info level")
	if strings.Contains(buf.String(), "hidden at info level") {
		t.Fatal("debug message logged at info level")
	}

	Init(Config{Level: LevelDebug, Output: &buf, Service: "test"})
	Debug("visible at debug level")
	if !strings.Contains(buf.String(), "visible at debug level") {
		t.Error("debug message missing after reconfiguring to debug level")
	}

	// Derived loggers created after reconfiguration inherit the new level.
	buf.Reset()
	WithField("component", "test").Debug("derived debug")
	if !strings.Contains(buf.String(), "derived debug") {
		t.Error("derived logger did not inherit the reconfigured level")
	}
}

func TestWithFieldsIncludedInOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Output: &buf, Service: "test"})

	log.WithField("email_id", 42).Info("processed")

	out := buf.String()
	if !strings.Contains(out, `"email_id":42`) {
		t.Errorf("field missing from output: %s", out)
	}
	if !strings.Contains(out, `"message":"processed"`) {
		t.Errorf("message missing from output: %s", out)
	}
}
