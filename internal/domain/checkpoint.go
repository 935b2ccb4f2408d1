package domain

import "time"

// CheckpointState marks why a key is done: it completed or it failed
// permanently. Either way the key is skipped on resume.
type CheckpointState string

const (
	CheckpointProcessed CheckpointState = "processed"
	CheckpointFailed    CheckpointState = "failed"
)

// CheckpointRecord is one completed key in the database-backed
// checkpoint store.
type CheckpointRecord struct {
	Key       string          `gorm:"type:text;primaryKey" json:"key"`
	State     CheckpointState `gorm:"type:text;not null;index" json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the database table name for CheckpointRecord.
func (CheckpointRecord) TableName() string {
	return "checkpoint_entries"
}
