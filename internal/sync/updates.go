package sync

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveFeed Phase = iota
	FetchMetadata
	FetchItems
	InsertItems
	BackfillItems
	OptimizeStore
)

func (p Phase) String() string {
	switch p {
	case ResolveFeed:
		return "resolve_feed"
	case FetchMetadata:
		return "fetch_metadata"
	case FetchItems:
		return "fetch_items"
	case InsertItems:
		return "insert_items"
	case BackfillItems:
		return "backfill_items"
	case OptimizeStore:
		return "optimize_store"
	default:
		return ""
	}
}

func resolveFeedUpdate(step, total int, trackingURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveFeed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving %s...", trackingURL),
	}
}

func fetchMetadataUpdate(step, total int, canonicalURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMetadata,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching metadata (%s)...", canonicalURL),
	}
}

func fetchItemsUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching item list (%s)...", title),
	}
}

func insertItemsUpdate(step, total, inserted int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Inserted %d new items (%s)", inserted, title),
		Data:    inserted,
	}
}

func backfillUpdate(step, total int, itemURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BackfillItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Backfilling %s...", itemURL),
	}
}
