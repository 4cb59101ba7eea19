package tracing

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// KeyOperation is the editor operation name (addBlock, undo, ...)
	KeyOperation = tag.MustNewKey("operation")
	// KeyStatus is "ok" or "error"
	KeyStatus = tag.MustNewKey("status")

	EditorOperations = stats.Int64("emailbuilder/editor/operations", "Number of editor operations", stats.UnitDimensionless)
	ExportLatency    = stats.Float64("emailbuilder/export/latency", "Time spent compiling a document", stats.UnitMilliseconds)
	OpenSessions     = stats.Int64("emailbuilder/editor/sessions", "Number of open editing sessions", stats.UnitDimensionless)
)

var (
	EditorOperationsView = &view.View{
		Name:        "emailbuilder/editor/operations_count",
		Measure:     EditorOperations,
		Description: "Editor operations by operation and status",
		TagKeys:     []tag.Key{KeyOperation, KeyStatus},
		Aggregation: view.Count(),
	}

	ExportLatencyView = &view.View{
		Name:        "emailbuilder/export/latency",
		Measure:     ExportLatency,
		Description: "Export latency distribution",
		TagKeys:     []tag.Key{KeyOperation, KeyStatus},
		Aggregation: view.Distribution(0, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	}

	OpenSessionsView = &view.View{
		Name:        "emailbuilder/editor/sessions",
		Measure:     OpenSessions,
		Description: "Open editing sessions",
		Aggregation: view.LastValue(),
	}
)

// RegisterEditorViews registers the editor and export views
func RegisterEditorViews() error {
	return view.Register(EditorOperationsView, ExportLatencyView, OpenSessionsView)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordOperation counts one editor operation
func RecordOperation(ctx context.Context, operation string, err error) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyOperation, operation), tag.Upsert(KeyStatus, statusOf(err))},
		EditorOperations.M(1),
	)
}

// RecordExport records how long a compilation took
func RecordExport(ctx context.Context, format string, started time.Time, err error) {
	elapsed := float64(time.Since(started)) / float64(time.Millisecond)
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyOperation, format), tag.Upsert(KeyStatus, statusOf(err))},
		ExportLatency.M(elapsed),
	)
}

// RecordSessions reports the current number of open sessions
func RecordSessions(ctx context.Context, count int) {
	stats.Record(ctx, OpenSessions.M(int64(count)))
}
