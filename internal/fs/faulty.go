package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrInjected is the default error returned by injected faults.
	ErrInjected = errors.New("injected fault")

	// ErrCrashed is returned when a crash point is reached and the crash
	// function returns instead of terminating the process.
	ErrCrashed = errors.New("injected crash")
)

// Fault defines failure behavior for files whose base name matches a rule.
type Fault struct {
	FailOnOpen     bool
	FailOnWrite    bool
	FailAfterBytes int64 // Fail writes that would exceed this many bytes. Zero disables.
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool // Matched against the base name of the rename source.
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// CrashPoint names a moment around a rename at which FaultyFS stops.
type CrashPoint int

const (
	CrashNone CrashPoint = iota
	// CrashBeforeRename stops before the rename is issued.
	CrashBeforeRename
	// CrashAfterRename stops after the rename succeeded, before any
	// following operation.
	CrashAfterRename
)

// FaultyFS is a FileSystem wrapper that injects errors and crash points.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	rules   map[string]Fault // base-name glob -> fault
	crash   CrashPoint
	crashFn func()
	ops     []string
}

// NewFaultyFS creates a new FaultyFS wrapping fsys (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:    fsys,
		rules: make(map[string]Fault),
	}
}

// AddRule injects fault for every path whose base name matches pattern
// (filepath.Match syntax).
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// CrashAt arms a crash point. fn is called when the point is reached; a
// subprocess test passes a function that exits the process. When fn is nil
// or returns, the operation fails with ErrCrashed and no further work is done.
func (f *FaultyFS) CrashAt(p CrashPoint, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crash = p
	f.crashFn = fn
}

// Ops returns the operations issued so far, in order, as "op base-name" strings.
func (f *FaultyFS) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *FaultyFS) record(op, name string) {
	f.mu.Lock()
	f.ops = append(f.ops, op+" "+filepath.Base(name))
	f.mu.Unlock()
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := filepath.Base(name)
	for pattern, rule := range f.rules {
		if ok, _ := filepath.Match(pattern, base); ok {
			return rule, true
		}
	}
	return Fault{}, false
}

func (f *FaultyFS) crashed(p CrashPoint) bool {
	f.mu.Lock()
	armed := f.crash == p
	fn := f.crashFn
	f.mu.Unlock()
	if !armed {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	fault, _ := f.match(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.err()}
	}
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	f.record("open", name)
	return &faultyFile{File: file, fs: f, name: name, fault: fault}, nil
}

func (f *FaultyFS) Mkdir(name string, perm os.FileMode) error {
	f.record("mkdir", name)
	return f.FS.Mkdir(name, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(oldpath); ok && fault.FailOnRename {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fault.err()}
	}
	if f.crashed(CrashBeforeRename) {
		return ErrCrashed
	}
	if err := f.FS.Rename(oldpath, newpath); err != nil {
		return err
	}
	f.record("rename", oldpath)
	if f.crashed(CrashAfterRename) {
		return ErrCrashed
	}
	return nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error)      { return f.FS.Stat(name) }
func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.FS.ReadDir(name) }
func (f *FaultyFS) ReadFile(name string) ([]byte, error)       { return f.FS.ReadFile(name) }
func (f *FaultyFS) RemoveAll(path string) error                { return f.FS.RemoveAll(path) }

type faultyFile struct {
	File
	fs      *FaultyFS
	name    string
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	limited := ff.fault.FailAfterBytes > 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes
	if ff.fault.FailOnWrite || limited {
		return 0, &os.PathError{Op: "write", Path: ff.name, Err: ff.fault.err()}
	}
	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return &os.PathError{Op: "sync", Path: ff.name, Err: ff.fault.err()}
	}
	if err := ff.File.Sync(); err != nil {
		return err
	}
	ff.fs.record("sync", ff.name)
	return nil
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return &os.PathError{Op: "close", Path: ff.name, Err: ff.fault.err()}
	}
	return ff.File.Close()
}
