// Package fs provides the filesystem abstraction used by segment persistence.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: directory and file operations (open, mkdir, rename, ...)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects I/O errors and crash points
//
// # Usage
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
//
// Tests wrap it to fail a specific step:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("vectors.f32", fs.Fault{FailOnSync: true})
//	ffs.CrashAt(fs.CrashAfterRename, nil)
//
// Operations take no context.Context: local filesystem calls are not
// interruptible at the syscall level.
package fs
