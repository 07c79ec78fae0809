package logger

// Logger provides structured logging tagged with the emitting component.
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Debug(component, message string, fields map[string]interface{})
}

type NoOpLogger struct{}

func (NoOpLogger) Info(component, message string, fields map[string]interface{})    {}
func (NoOpLogger) Error(component string, err error, fields map[string]interface{}) {}
func (NoOpLogger) Warning(component, message string, fields map[string]interface{}) {}
func (NoOpLogger) Debug(component, message string, fields map[string]interface{})   {}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}
