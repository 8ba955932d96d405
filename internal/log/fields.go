package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Analysis
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldComponent = "component"
)
