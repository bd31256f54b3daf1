package consoles

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type logrusConsole struct {
	entry    *logrus.Entry
	prefixes *[]string
}

// NewStdOutConsole logs to stdout. The level can be changed with THANKS_LOG_LEVEL.
func NewStdOutConsole() Console {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	level, err := logrus.ParseLevel(os.Getenv("THANKS_LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return NewLogrusConsole(logger)
}

func NewDiscardConsole() Console {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLogrusConsole(logger)
}

func NewLogrusConsole(logger *logrus.Logger) Console {
	return &logrusConsole{
		entry:    logrus.NewEntry(logger),
		prefixes: &[]string{},
	}
}

// Logger exposes the underlying logger so other libraries can share it.
func Logger(c Console) *logrus.Logger {
	if lc, ok := c.(*logrusConsole); ok {
		return lc.entry.Logger
	}
	return logrus.StandardLogger()
}

func (o *logrusConsole) message(format string, a ...any) string {
	builder := strings.Builder{}
	for _, prefix := range *o.prefixes {
		builder.WriteString(prefix)
	}
	builder.WriteString(fmt.Sprintf(format, a...))
	return strings.TrimRight(builder.String(), "\n")
}

func (o *logrusConsole) Printf(format string, a ...any) {
	o.entry.Info(o.message(format, a...))
}

func (o *logrusConsole) Warnf(format string, a ...any) {
	o.entry.Warn(o.message(format, a...))
}

func (o *logrusConsole) Errorf(format string, a ...any) {
	o.entry.Error(o.message(format, a...))
}

// WithField returns a console with its own copy of the prefixes.
func (o *logrusConsole) WithField(key string, value any) Console {
	prefixes := make([]string, len(*o.prefixes))
	copy(prefixes, *o.prefixes)

	return &logrusConsole{
		entry:    o.entry.WithField(key, value),
		prefixes: &prefixes,
	}
}

func (o *logrusConsole) PushPrefix(format string, a ...any) {
	*o.prefixes = append(*o.prefixes, fmt.Sprintf(format, a...))
}

func (o *logrusConsole) PopPrefix() {
	if len(*o.prefixes) == 0 {
		return
	}
	*o.prefixes = (*o.prefixes)[:len(*o.prefixes)-1]
}
