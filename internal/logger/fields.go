package logger

// Standard field names for structured logging.
// Use these constants instead of raw strings to keep keys consistent.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Frames
	FieldFrame    = "frame"
	FieldRows     = "rows"
	FieldCols     = "cols"
	FieldFPS      = "fps"
	FieldDropped  = "dropped"
	FieldEmpty    = "empty_frames"
	FieldSource   = "source"
	FieldSequence = "sequence"

	// Detection
	FieldSigma        = "sigma"
	FieldTLow         = "tlow"
	FieldTHigh        = "thigh"
	FieldEdges        = "edges"
	FieldMaxMagnitude = "max_magnitude"

	// Timing
	FieldDurationMS = "duration_ms"

	// Files and errors
	FieldPath  = "path"
	FieldError = "error"
)
