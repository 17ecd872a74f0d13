package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
)

// Writer appends one JSON line per monitoring pass to the routine output
// file, so consecutive scheduler invocations build a machine-readable history
// alongside the human-readable log.
type Writer struct {
	Path string
	f    *os.File
	lock sync.Mutex
}

func NewFileWriter(filePath string) (*Writer, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open output file %s", filePath)
	}
	return &Writer{
		Path: filePath,
		f:    f,
	}, nil
}

func (w *Writer) WritePass(result *types.PassResult) error {
	entry, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "could not encode pass result")
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	if _, err := w.f.Write(append(entry, '\n')); err != nil {
		return errors.Wrap(err, "could not write pass result")
	}
	return nil
}

func (w *Writer) Close() error {
	return w.f.Close()
}
