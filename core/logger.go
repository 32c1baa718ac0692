package core

// Logger reports application events to stdout and, depending on the
// implementation, to an error-tracking backend.
// args may carry errors or arbitrary context values.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
