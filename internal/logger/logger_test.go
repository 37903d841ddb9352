package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutputWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)

	Component(log, "ledger").Debug("entry appended")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}

	if line["message"] != "entry appended" {
		t.Errorf("Expected message field, got %v", line["message"])
	}
	if line["level"] != "debug" {
		t.Errorf("Expected level field, got %v", line["level"])
	}
	if line["component"] != "ledger" {
		t.Errorf("Expected component field, got %v", line["component"])
	}
	if _, ok := line["timestamp"]; !ok {
		t.Error("Expected timestamp field")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := NewWithOutput("verbose", &bytes.Buffer{})

	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}
}
