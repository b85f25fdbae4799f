// Package mmap maps segment files read-only for decoding.
//
//	m, err := mmap.Open(path)
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// On unix the file is mapped with mmap(2) and advised for sequential reads
// through golang.org/x/sys/unix. Elsewhere it is read into memory.
package mmap
