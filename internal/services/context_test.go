package services_test

import (
	"context"
	"testing"

	"mediajobs/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "job-42")
	ctx = services.WithEngine(ctx, "ffmpeg")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-42" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if engine, ok := services.EngineFromContext(ctx); !ok || engine != "ffmpeg" {
		t.Fatalf("unexpected engine: %v %v", engine, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEngine(ctx, "")
	ctx = services.WithJobID(ctx, "")
	if _, ok := services.EngineFromContext(ctx); ok {
		t.Fatal("expected no engine value")
	}
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job id value")
	}
}
