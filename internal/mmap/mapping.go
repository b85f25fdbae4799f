package mmap

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrTooLarge is returned for files that do not fit the address space.
var ErrTooLarge = errors.New("mmap: file too large")

// Mapping is a read-only, sequentially advised view of a whole file.
type Mapping struct {
	data  []byte
	unmap func([]byte) error
}

// Open maps the file at path. Empty files yield an empty mapping without a
// system call.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, size)
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the file contents. They are invalid after Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Len returns the mapped length in bytes.
func (m *Mapping) Len() int { return len(m.data) }

// Close releases the mapping. Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	data := m.data
	m.data = nil
	if data == nil || m.unmap == nil {
		return nil
	}
	return m.unmap(data)
}
