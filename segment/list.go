package segment

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/hupe1980/nvdb/internal/fs"
)

// List returns the names of committed segments under root, sorted by name.
// Working directories and plain files are skipped. A missing root yields an
// empty list.
func List(root string) ([]string, error) {
	return ListFS(fs.Default, root)
}

// ListFS is List over an explicit filesystem.
func ListFS(fsys fs.FileSystem, root string) ([]string, error) {
	entries, err := fsys.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("list segments", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasSuffix(e.Name(), TmpSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
