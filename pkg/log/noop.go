package log

// NoopLogger discards everything. It is the default for library packages.
type NoopLogger struct{}

func NewNoopLogger() NoopLogger { return NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
