package alert

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
)

// Sink records alert events durably. Record must be safe for concurrent use;
// events are append-only and never rewritten.
type Sink interface {
	Record(ctx context.Context, event types.AlertEvent) error
	Close() error
}

// FileSink appends one JSON line per event. When maxSizeBytes is non-zero and
// the file would grow past it, the current file is renamed to `<path>.1`
// (replacing any previous generation) and a fresh file is started. A zero
// maxSizeBytes keeps the historical unbounded-append behavior.
type FileSink struct {
	path         string
	maxSizeBytes int64

	lock sync.Mutex
	f    *os.File
	size int64
}

func NewFileSink(path string, maxSizeBytes int64) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open alert log %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "could not stat alert log %s", path)
	}
	return &FileSink{
		path:         path,
		maxSizeBytes: maxSizeBytes,
		f:            f,
		size:         info.Size(),
	}, nil
}

func (s *FileSink) Record(ctx context.Context, event types.AlertEvent) error {
	entry, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "could not encode alert event")
	}
	entry = append(entry, '\n')

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.maxSizeBytes > 0 && s.size+int64(len(entry)) > s.maxSizeBytes {
		if err := s.rotate(); err != nil {
			return err
		}
	}

	n, err := s.f.Write(entry)
	s.size += int64(n)
	if err != nil {
		return errors.Wrap(err, "could not append alert event")
	}
	return nil
}

// rotate is called with the lock held.
func (s *FileSink) rotate() error {
	if err := s.f.Close(); err != nil {
		return errors.Wrap(err, "could not close alert log for rotation")
	}
	if err := os.Rename(s.path, s.path+".1"); err != nil {
		return errors.Wrap(err, "could not rotate alert log")
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "could not reopen alert log after rotation")
	}
	s.f = f
	s.size = 0
	return nil
}

func (s *FileSink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.f.Close()
}

// MemorySink keeps events in memory, for tests and for in-pass aggregation.
type MemorySink struct {
	lock   sync.Mutex
	events []types.AlertEvent
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(ctx context.Context, event types.AlertEvent) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemorySink) Events() []types.AlertEvent {
	s.lock.Lock()
	defer s.lock.Unlock()
	events := make([]types.AlertEvent, len(s.events))
	copy(events, s.events)
	return events
}

func (s *MemorySink) Close() error {
	return nil
}
