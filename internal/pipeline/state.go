package pipeline

// RunState tracks a pipeline run through its lifecycle. FAILED is
// terminal and reachable from any step.
type RunState int8

const (
	// StateInitialized is the state before any file work starts.
	StateInitialized RunState = iota
	// StateNormalizing covers fetching and parsing input files.
	StateNormalizing
	// StateClassifying covers matching records against the category snapshot.
	StateClassifying
	// StateAggregating covers merging per-file partials into report structures.
	StateAggregating
	// StateFinalized means every artifact was written successfully.
	StateFinalized
	// StateFailed means the run aborted; no artifacts from it are visible.
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateInitialized:
		return "INITIALIZED"
	case StateNormalizing:
		return "NORMALIZING"
	case StateClassifying:
		return "CLASSIFYING"
	case StateAggregating:
		return "AGGREGATING"
	case StateFinalized:
		return "FINALIZED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
