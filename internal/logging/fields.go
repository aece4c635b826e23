package logging

// Field name constants for structured logging.
const (
	FieldError     = "error"
	FieldPath      = "path"
	FieldTarget    = "target"
	FieldLine      = "line"
	FieldColumn    = "column"
	FieldRoot      = "root"
	FieldOutput    = "output"
	FieldRunID     = "run_id"
	FieldLanguage  = "language"
	FieldPending   = "pending"
	FieldProcessed = "processed"
	FieldNodes     = "nodes"
	FieldEntries   = "entries"
	FieldDuration  = "duration"
)
