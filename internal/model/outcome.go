package model

// DataMode tells consumers which end of the sequence a mutation touched.
type DataMode int

const (
	// DataModeInit replaces the whole sequence.
	DataModeInit DataMode = iota
	// DataModeBackward concatenates older history after the current sequence.
	DataModeBackward
	// DataModeForward concatenates newer data before the current sequence,
	// shifting every existing index by the payload length.
	DataModeForward
	// DataModeUpdate appends or replaces the live bar.
	DataModeUpdate
)

func (m DataMode) String() string {
	switch m {
	case DataModeInit:
		return "init"
	case DataModeBackward:
		return "backward"
	case DataModeForward:
		return "forward"
	case DataModeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// LoadDirection names a pagination direction.
type LoadDirection int

const (
	LoadBackward LoadDirection = iota
	LoadForward
)

func (d LoadDirection) String() string {
	if d == LoadForward {
		return "forward"
	}
	return "backward"
}

// Mode returns the ingestion mode a completed load in this direction maps to.
func (d LoadDirection) Mode() DataMode {
	if d == LoadForward {
		return DataModeForward
	}
	return DataModeBackward
}

// MoreHint carries the source's "has more" flag alongside a data payload.
// The original widget exposes a single forward field; on initial load both
// pagination directions are driven from it.
type MoreHint struct {
	Forward bool
}

// UpdateOutcome is the explicit result of a data mutation. State transitions
// are identical to the historical silent-no-op behavior; the outcome only
// names what happened so callers and tests can tell the cases apart.
type UpdateOutcome int

const (
	// UpdateApplied means the sequence was mutated.
	UpdateApplied UpdateOutcome = iota
	// UpdateStaleDropped means a single-bar update carried a timestamp older
	// than the live bar and was discarded.
	UpdateStaleDropped
	// UpdateIgnored means the payload produced no state change (for example
	// an empty pagination page).
	UpdateIgnored
)

func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdateStaleDropped:
		return "stale_dropped"
	case UpdateIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// LoadRequestOutcome is the explicit result of a pagination request.
type LoadRequestOutcome int

const (
	// LoadStarted means the external collaborator was invoked.
	LoadStarted LoadRequestOutcome = iota
	// LoadAlreadyLoading means a request is still in flight.
	LoadAlreadyLoading
	// LoadNoMoreData means the source flagged that direction exhausted, or
	// no collaborator is wired.
	LoadNoMoreData
)

func (o LoadRequestOutcome) String() string {
	switch o {
	case LoadStarted:
		return "started"
	case LoadAlreadyLoading:
		return "already_loading"
	case LoadNoMoreData:
		return "no_more_data"
	default:
		return "unknown"
	}
}
