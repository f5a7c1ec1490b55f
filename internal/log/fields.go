package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldChannel = "channel"
	FieldTaskID  = "task_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldExitCode  = "exit_code"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path fields
	FieldPath       = "path"
	FieldOutputPath = "output_path"
)
