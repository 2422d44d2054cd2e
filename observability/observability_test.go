package observability

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZap(zap.New(core)).With(String("component", "builder"))
	log.Warn("star columns clamped", Int("columns", 2), Float64("body", 453.5), Bool("clamped", true))
	log.Debug("detail", Error("err", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "builder" || ctx["columns"] != int64(2) || ctx["clamped"] != true {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("level = %v", entries[0].Level)
	}
	if got := entries[1].ContextMap()["err"]; got != "boom" {
		t.Fatalf("error field = %v", got)
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	l.With(String("k", "v")).Info("ignored")
}
