package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"ember-mc/server/storage"
)

// Log levels as persisted in the server log table.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Recorder persists console lines. The storage collaborator satisfies it.
type Recorder interface {
	CreateLog(ctx context.Context, level, message string) (*storage.LogEntry, error)
}

// Listener receives every formatted console line. Listeners back the live
// console view; they must not block for long.
type Listener func(line string)

// Console fans formatted log lines out to an io.Writer, the storage log
// table, and any subscribed listeners. Lines look like
// "[15:04:05] [INFO]: message".
type Console struct {
	mu           sync.Mutex
	out          *log.Logger
	recorder     Recorder
	fallback     *log.Logger
	clock        func() time.Time
	listeners    map[uint64]Listener
	nextListener uint64
}

// New builds a console writing lines to out and persisting them through
// recorder. Either may be nil; a nil recorder keeps the console purely
// in-process.
func New(out io.Writer, recorder Recorder) *Console {
	var logger *log.Logger
	if out != nil {
		logger = log.New(out, "", 0)
	}
	return &Console{
		out:       logger,
		recorder:  recorder,
		fallback:  log.New(os.Stderr, "[console] ", log.LstdFlags),
		clock:     time.Now,
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers a listener and returns the function that removes it.
func (c *Console) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Infof logs at INFO level.
func (c *Console) Infof(format string, args ...any) {
	c.Logf(LevelInfo, format, args...)
}

// Warnf logs at WARN level.
func (c *Console) Warnf(format string, args ...any) {
	c.Logf(LevelWarn, format, args...)
}

// Errorf logs at ERROR level.
func (c *Console) Errorf(format string, args ...any) {
	c.Logf(LevelError, format, args...)
}

// Logf formats one console line, emits it to the writer and listeners, and
// persists it. A failing recorder never takes the console down; the error
// goes to the stderr fallback exactly once per call.
func (c *Console) Logf(level, format string, args ...any) {
	if c == nil {
		return
	}
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] [%s]: %s", c.clock().Format("15:04:05"), level, message)

	c.mu.Lock()
	out := c.out
	snapshot := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		snapshot = append(snapshot, fn)
	}
	c.mu.Unlock()

	if out != nil {
		out.Println(line)
	}
	for _, fn := range snapshot {
		fn(line)
	}

	if c.recorder != nil {
		if _, err := c.recorder.CreateLog(context.Background(), level, message); err != nil {
			c.fallback.Printf("failed to persist log line: %v", err)
		}
	}
}
