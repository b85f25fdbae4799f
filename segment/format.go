package segment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/nvdb/distance"
)

const (
	// IDsFileName holds one little-endian uint64 per row.
	IDsFileName = "ids.bin"
	// VectorsFileName holds count*dim little-endian float32 values.
	VectorsFileName = "vectors.f32"
	// MetaFileName holds the JSON encoded Metadata.
	MetaFileName = "meta.json"
	// TmpSuffix marks a segment directory that has not been committed.
	TmpSuffix = ".tmp"

	idSize    = 8
	floatSize = 4
)

// Metadata describes the shape of a segment.
type Metadata struct {
	Count  uint32 `json:"count"`
	Dim    uint   `json:"dim"`
	Metric string `json:"metric"`
}

func decodeMetadata(data []byte) (Metadata, distance.Metric, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, 0, fmt.Errorf("%w: parse %s: %w", ErrCorrupt, MetaFileName, err)
	}
	m, err := distance.ParseMetric(md.Metric)
	if err != nil {
		return Metadata{}, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if md.Dim == 0 {
		return Metadata{}, 0, fmt.Errorf("%w: zero dimension", ErrCorrupt)
	}
	return md, m, nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid segment name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("invalid segment name %q: contains a path separator", name)
	case strings.HasSuffix(name, TmpSuffix):
		return fmt.Errorf("invalid segment name %q: reserved suffix %s", name, TmpSuffix)
	}
	return nil
}
