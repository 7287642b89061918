package review

// Logger is the orchestration-level structured logger. Adapters bridge this
// to the underlying log transport.
type Logger interface {
	LogInfo(message string, fields map[string]interface{})
	LogWarning(message string, fields map[string]interface{})
}
