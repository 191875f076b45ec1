package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", SamplesKey, 10)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0]["message"] != "shown" {
		t.Errorf("Unexpected message %v", entries[0]["message"])
	}
	if entries[0]["level"] != "info" {
		t.Errorf("Unexpected level %v", entries[0]["level"])
	}
	if entries[0][SamplesKey] != 10.0 {
		t.Errorf("Expected %s=10, got %v", SamplesKey, entries[0][SamplesKey])
	}

	ctx := context.Background()
	if logger.Enabled(ctx, LevelDebug) {
		t.Error("Debug should be disabled")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled")
	}
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ModelNameKey, "Regression")

	logger.Debug("fit started", OperationKey, OperationFit)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0][ModelNameKey] != "Regression" {
		t.Errorf("Context field missing: %v", entries[0])
	}
	if entries[0][OperationKey] != OperationFit {
		t.Errorf("Operation field missing: %v", entries[0])
	}
}

func TestZerologLogger_ErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewDimensionError("Regression.Predict", 3, 4, 1)
	logger.Error("predict failed", err, OperationKey, OperationPredict)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry[ErrAttrKey] != err.Error() {
		t.Errorf("Expected error message %q, got %v", err.Error(), entry[ErrAttrKey])
	}
	st, _ := entry[StacktraceAttrKey].(string)
	if !strings.Contains(st, "zerolog_test.go") {
		t.Errorf("Expected stacktrace to reference the test file, got %q", st)
	}
	detail, ok := entry["detail"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected structured error detail, got %v", entry["detail"])
	}
	if detail["type"] != "DimensionError" || detail["expected"] != 3.0 {
		t.Errorf("Unexpected detail %v", detail)
	}
	if entry[OperationKey] != OperationPredict {
		t.Errorf("Operation field missing: %v", entry)
	}
}

func TestZerologLogger_ErrorKeyField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	logger.Error("fit failed", ErrAttrKey, errors.New("boom"), ErrorCodeKey, ErrorSingularMatrix)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0][ErrAttrKey] != "boom" {
		t.Errorf("Expected error boom, got %v", entries[0][ErrAttrKey])
	}
	if entries[0][ErrorCodeKey] != ErrorSingularMatrix {
		t.Errorf("Error code missing: %v", entries[0])
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetLogger(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	testLogger, _ := NewTestLogger(LevelDebug)
	SetLogger(testLogger)
	GetLogger().Info("through default")

	if !testLogger.ContainsMessage("through default") {
		t.Error("Default logger was not replaced")
	}

	SetLogger(nil)
	if GetLogger() == nil {
		t.Error("SetLogger(nil) should install a no-op logger")
	}
}
