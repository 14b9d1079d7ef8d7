package reconcile

// State is a stage of one reconciliation run.
type State int

const (
	// StateIngesting consumes archive pages while the archive producer runs.
	StateIngesting State = iota
	// StateFlushingArchiveUnits merges pages already fetched but not yet
	// merged, so the ledger reflects every archive record.
	StateFlushingArchiveUnits
	// StateDrainingFinalBatches dispatches every pending id, including an
	// under-threshold final chunk.
	StateDrainingFinalBatches
	// StateAwaitingLiveUnits waits for every dispatched lookup to merge.
	StateAwaitingLiveUnits
	// StateDone is a successful resolution.
	StateDone
	// StateErrored is a resolution with a failure; the result still
	// carries the best-effort ledger.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIngesting:
		return "ingesting"
	case StateFlushingArchiveUnits:
		return "flushing_archive_units"
	case StateDrainingFinalBatches:
		return "draining_final_batches"
	case StateAwaitingLiveUnits:
		return "awaiting_live_units"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}
