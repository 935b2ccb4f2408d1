package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the pipeline.
const (
	// FieldRunID identifies one batch invocation.
	FieldRunID = "run_id"

	// FieldKeyword is the job item key currently being processed.
	FieldKeyword = "keyword"

	// FieldDestination names a publish target.
	FieldDestination = "destination"

	// FieldComponent is the component/module name.
	FieldComponent = "component"

	// FieldRequestID is the HTTP request ID on the monitor endpoint.
	FieldRequestID = "request_id"
)

// Standard metric fields used for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
)
