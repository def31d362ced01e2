package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestLogEvent_CompleteFieldsPassSchema(t *testing.T) {
	l, logs := observedLogger()

	l.LogRegime("regime_change", map[string]interface{}{
		"from":       "Calm",
		"to":         "Alert",
		"vol_ratio":  1.3,
		"return_20d": -0.02,
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, tagged := entries[0].ContextMap()["_schema_error"]; tagged {
		t.Error("complete fields must not be tagged with _schema_error")
	}
}

func TestLogEvent_MissingFieldsAreTagged(t *testing.T) {
	l, logs := observedLogger()

	l.LogRegime("regime_change", map[string]interface{}{"from": "Calm"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, tagged := entries[0].ContextMap()["_schema_error"]; !tagged {
		t.Error("missing required fields must tag the entry with _schema_error")
	}
}

func TestLogEvent_UnknownEventNotTagged(t *testing.T) {
	l, logs := observedLogger()

	l.LogRebalance("ad_hoc_event", map[string]interface{}{"anything": 1})

	if _, tagged := logs.All()[0].ContextMap()["_schema_error"]; tagged {
		t.Error("events without a declared schema must pass through untagged")
	}
}
