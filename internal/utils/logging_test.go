package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" warn ":  logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestTraceIDInContextLogger(t *testing.T) {
	var buf bytes.Buffer
	InitLogging("info", "json", &buf)
	defer InitLogging("info", "text", nil)

	traceID := GenerateTraceID()
	if _, err := uuid.Parse(traceID); err != nil {
		t.Fatalf("trace id is not a uuid: %v", err)
	}

	ctx := WithTraceID(context.Background(), traceID)
	if got := GetTraceIDFromContext(ctx); got != traceID {
		t.Fatalf("Expected %s, got %s", traceID, got)
	}

	LoggerFromContext(ctx).Info("hello")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if entry[TraceIDKey] != traceID {
		t.Errorf("Expected traceId field %s, got %v", traceID, entry[TraceIDKey])
	}
	if GetTraceIDFromContext(context.Background()) != "" {
		t.Error("Expected empty trace id for bare context")
	}
}
