package logger

// Standard field keys of a log record.
const (
	FieldService     = "service"
	FieldEnvironment = "environment"
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldRequest     = "request"
	FieldError       = "error"
	FieldErrorName   = "error_name"
	FieldStack       = "stack"
	FieldOperation   = "operation"
	FieldReason      = "reason"
	FieldSignal      = "signal"
	FieldStatus      = "status"
	FieldCode        = "error_code"
	FieldDuration    = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("listening", logger.Fields("addr", ":8080"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}
