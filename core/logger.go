package core

// Logger is any service that can log leveled messages.
// Implementations may inspect args for well-known types (errors, user.User)
// and report them to external systems.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
