package ingest

// Status strings returned to the caller of the handler.
const (
	// SuccessMessage is returned verbatim when the row was appended.
	SuccessMessage = "Data loaded successfully into BigQuery!"

	// ErrorPrefix precedes the failure description in error results.
	ErrorPrefix = "Error during execution: "
)

// Source columns copied into the destination row.
const (
	InvoiceNoColumn = "InvoiceNo"
	QuantityColumn  = "Quantity"
)

// RequiredColumns lists the projected columns in destination order.
var RequiredColumns = []string{InvoiceNoColumn, QuantityColumn}

// Pipeline step names, used in logs and StepError.
const (
	StepFetch    = "fetch"
	StepSnapshot = "snapshot"
	StepProject  = "project"
	StepLoad     = "load"
)
