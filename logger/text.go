package logger

import (
	"fmt"
	"os"
	"sync"
)

// Text appends lines to a single log file. Writes are mutex-serialized
// because every symbol lane shares the one sink.
type Text struct {
	path string

	mu sync.Mutex
	f  *os.File
}

func NewText(path string) *Text {
	return &Text{path: path}
}

func (l *Text) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f != nil {
		return nil
	}

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("open log %s: %w", l.path, err)
	}
	l.f = f
	return nil
}

func (l *Text) Write(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil || line == "" {
		return
	}
	fmt.Fprintln(l.f, line)
}

func (l *Text) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
