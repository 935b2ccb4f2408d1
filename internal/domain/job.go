package domain

// ItemKind distinguishes keywords read from the source file from
// derived items such as pre-generated variations.
type ItemKind string

const (
	ItemKindPrimary ItemKind = "primary"
	ItemKindDerived ItemKind = "derived"
)

// ItemStatus represents the processing status of a job item.
// Transitions are one-way: pending to succeeded or pending to failed.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusSucceeded ItemStatus = "succeeded"
	ItemStatusFailed    ItemStatus = "failed"
)

// JobItem is one unit of work in a batch run, keyed by its keyword.
// Depth counts fan-out hops from the source file; rows read from the
// keywords file sit at depth 0.
type JobItem struct {
	Key    string
	Kind   ItemKind
	Status ItemStatus
	Depth  int
}

// NewJobItem creates a pending primary item for a keyword.
func NewJobItem(key string) JobItem {
	return JobItem{Key: key, Kind: ItemKindPrimary, Status: ItemStatusPending}
}
