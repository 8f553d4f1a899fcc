package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldPage       = "page"
	FieldLine       = "line"
	FieldExcerpt    = "excerpt"
	FieldLayout     = "layout"
	FieldExtractor  = "extractor"
	FieldRunID      = "run_id"
	FieldOutcome    = "outcome"
	FieldCategory   = "category"
	FieldClassifier = "classifier"
	FieldBatch      = "batch"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldDropped    = "dropped"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRequestID  = "request_id"
	FieldIntent     = "intent"
)

// ExcerptLength is the number of characters of an offending source line kept
// in log output.
const ExcerptLength = 50

// Excerpt truncates s to ExcerptLength runes for logging.
func Excerpt(s string) string {
	r := []rune(s)
	if len(r) <= ExcerptLength {
		return s
	}
	return string(r[:ExcerptLength]) + "..."
}
