package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestFileExporter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestFileExporter_WritesOneLinePerSpan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Now()
	stubs := tracetest.SpanStubs{
		{
			Name:      SpanDrop,
			StartTime: start,
			EndTime:   start.Add(1500 * time.Microsecond),
			Attributes: []attribute.KeyValue{
				attribute.String(AttrGroupID, "g"),
				attribute.Int(AttrToIndex, 2),
			},
			Status: sdktrace.Status{Code: codes.Error, Description: "snapshot matches no item"},
			Events: []sdktrace.Event{{Name: EventSpill, Time: start}},
		},
		{Name: SpanRemove, StartTime: start, EndTime: start},
	}
	require.NoError(t, exp.ExportSpans(context.Background(), stubs.Snapshots()))
	require.NoError(t, exp.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)

	drop := recs[0]
	require.Equal(t, SpanDrop, drop.Name)
	require.Equal(t, "ERROR", drop.Status)
	require.Equal(t, "snapshot matches no item", drop.StatusMsg)
	require.InDelta(t, 1.5, drop.DurationMs, 0.001)
	require.Equal(t, "g", drop.Attributes[AttrGroupID])
	require.EqualValues(t, 2, drop.Attributes[AttrToIndex])
	require.Len(t, drop.Events, 1)
	require.Equal(t, EventSpill, drop.Events[0].Name)

	require.Equal(t, "UNSET", recs[1].Status)
	require.Empty(t, recs[1].Attributes)
}

func TestFileExporter_ExportAfterShutdown(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()), "second shutdown is a no-op")

	stub := tracetest.SpanStub{Name: SpanDrop}
	err = exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err)
}
