// Package metrics exposes cycle timer observability hooks. The daemon runs
// with NoopRecorder unless a metrics listen address is configured.
package metrics

// ResultLabel enumerates outcomes for snapshot reads and writes.
type ResultLabel string

const (
	ResultSuccess   ResultLabel = "success"
	ResultFailed    ResultLabel = "failed"
	ResultMissing   ResultLabel = "missing"
	ResultMalformed ResultLabel = "malformed"
)

// Recorder defines observability hooks for the cycle store and countdown.
type Recorder interface {
	IncCycleStarted()
	IncCycleEnded(status string)
	SetActiveCycle(active bool)
	SetRemainingSeconds(sec int64)
	IncSnapshotWrite(result ResultLabel)
	IncSnapshotLoad(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncCycleStarted()             {}
func (NoopRecorder) IncCycleEnded(string)         {}
func (NoopRecorder) SetActiveCycle(bool)          {}
func (NoopRecorder) SetRemainingSeconds(int64)    {}
func (NoopRecorder) IncSnapshotWrite(ResultLabel) {}
func (NoopRecorder) IncSnapshotLoad(ResultLabel)  {}
