package tracing

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("OTLP_ENDPOINT", "")
	t.Setenv("TRACE_SAMPLE_RATE", "")

	cfg := FromEnv("print-api")
	if cfg.ServiceName != "print-api" {
		t.Errorf("ServiceName = %q, want print-api", cfg.ServiceName)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.OTLPEndpoint != "localhost:4317" {
		t.Errorf("OTLPEndpoint = %q, want localhost:4317", cfg.OTLPEndpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
	if cfg.ExportTimeout != 10*time.Second {
		t.Errorf("ExportTimeout = %v, want 10s", cfg.ExportTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACE_SAMPLE_RATE", "0.25")

	cfg := FromEnv("print-worker")
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	if cfg.OTLPEndpoint != "collector:4317" {
		t.Errorf("OTLPEndpoint = %q, want collector:4317", cfg.OTLPEndpoint)
	}
	if cfg.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", cfg.SampleRate)
	}
}

func TestFromEnvRejectsBadSampleRate(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-0.5", "2.0"} {
		t.Setenv("TRACE_SAMPLE_RATE", raw)
		if cfg := FromEnv("svc"); cfg.SampleRate != 1.0 {
			t.Errorf("TRACE_SAMPLE_RATE=%q: SampleRate = %v, want 1.0", raw, cfg.SampleRate)
		}
	}
}

func TestSamplerSelection(t *testing.T) {
	if desc := sampler(1.0).Description(); desc != "AlwaysOnSampler" {
		t.Errorf("sampler(1.0) = %q, want AlwaysOnSampler", desc)
	}
	desc := sampler(0.5).Description()
	if !strings.HasPrefix(desc, "ParentBased") || !strings.Contains(desc, "TraceIDRatioBased") {
		t.Errorf("sampler(0.5) = %q, want parent-based ratio sampler", desc)
	}
}
