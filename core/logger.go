package core

// Logger is implemented by services/logger.
// args may contain errors, maps of extra data and the user the log is about.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the user a log entry is about.
type Person struct {
	ID       string
	Username string
	Email    string
}
