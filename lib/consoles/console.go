package consoles

type Console interface {
	Printf(format string, a ...any)
	Warnf(format string, a ...any)
	Errorf(format string, a ...any)

	// WithField returns a console that adds a field to every record. It starts
	// with the current prefixes but pushing or popping does not affect the
	// original.
	WithField(key string, value any) Console

	PushPrefix(format string, a ...any)
	PopPrefix()
}
