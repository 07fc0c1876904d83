package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_ExportsNameAttributesAndStatus(t *testing.T) {
	// GIVEN an in-memory exporter installed as the global provider
	resetProvider(t)
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("pcb-sim-test", "test", exporter))
	defer func() { _ = Shutdown(context.Background()) }()

	// WHEN a parent span with one failing child is recorded
	ctx, parent := StartSpan(context.Background(), "tick")
	parent.WithAttributes(map[string]string{"run": "r1"}).WithInt("pid", 7)
	_, child := StartSpan(ctx, "admit")
	EndSpan(child, errors.New("allocation failed"))
	EndSpan(parent, nil)

	// THEN both spans are exported, the child under the parent
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "admit", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "tick", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	attrs := map[string]string{}
	for _, kv := range spans[1].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "r1", attrs["run"])
	assert.Equal(t, "7", attrs["pid"])
}

func TestEndSpan_NilSpanIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		EndSpan(nil, errors.New("x"))
		var s *Span
		s.WithAttributes(map[string]string{"a": "b"}).WithInt("n", 1).SetStatus(nil)
	})
}

func TestInitWriter_InstalledProviderClosesFileOnShutdown(t *testing.T) {
	// GIVEN no provider yet and an open trace file
	resetProvider(t)
	f, err := os.Create(filepath.Join(t.TempDir(), "spans.json"))
	require.NoError(t, err)

	// WHEN it backs the provider and a span is exported
	require.NoError(t, initWriter("pcb-sim-test", "test", f, f))
	_, span := StartSpan(context.Background(), "dispatch")
	EndSpan(span, nil)

	// THEN the file stays open until Shutdown closes it
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	require.NoError(t, Shutdown(context.Background()))
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}

func TestInitWriter_LosingInitClosesFileImmediately(t *testing.T) {
	// GIVEN a provider already installed
	resetProvider(t)
	require.NoError(t, InitWithExporter("pcb-sim-test", "test", tracetest.NewInMemoryExporter()))
	defer func() { _ = Shutdown(context.Background()) }()
	f, err := os.Create(filepath.Join(t.TempDir(), "late.json"))
	require.NoError(t, err)

	// WHEN a second initialisation with a file arrives
	require.NoError(t, initWriter("pcb-sim-test", "test", f, f))

	// THEN the file was closed and not kept as the output
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
	assert.Nil(t, output)
}

func TestInit_UncreatableFileFails(t *testing.T) {
	resetProvider(t)
	err := Init("pcb-sim-test", "test", filepath.Join(t.TempDir(), "missing", "spans.json"))
	assert.Error(t, err)
	assert.Nil(t, provider)
}

// resetProvider clears the package-level provider so each test installs its own.
func resetProvider(t *testing.T) {
	t.Helper()
	providerOnce = sync.Once{}
	providerErr = nil
	provider = nil
	output = nil
}
