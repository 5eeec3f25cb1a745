// Package logger defines the run-scoped event log. The sink is one shared
// file written to by every symbol lane, so implementations must serialize
// writes.
package logger

// Logger is opened once per run and closed on every exit path.
type Logger interface {
	Open() error
	Write(line string)
	Close() error
}

// Nop discards everything. Used in tests and when no log file is configured.
type Nop struct{}

func (Nop) Open() error        { return nil }
func (Nop) Write(line string)  {}
func (Nop) Close() error       { return nil }
