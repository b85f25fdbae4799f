package segment

import "errors"

var (
	// ErrIO wraps any create, write, read, rename or fsync failure.
	ErrIO = errors.New("segment i/o failure")

	// ErrCorrupt is returned when segment metadata or content is inconsistent.
	ErrCorrupt = errors.New("segment data corruption")

	// ErrWriterClosed is returned when Commit is called on a used writer.
	ErrWriterClosed = errors.New("segment writer already committed")

	// ErrExists is returned when the final segment name is already taken.
	ErrExists = errors.New("segment already exists")

	// ErrNotCommitted is returned when opening a working (.tmp) directory.
	ErrNotCommitted = errors.New("segment not committed")
)
