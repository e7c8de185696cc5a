package core

// Logger logs messages with increasing severity and optionally reports them to
// an external error tracker. Extra args may carry a user.User (reported as the
// acting person) or any values to log alongside the message.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
