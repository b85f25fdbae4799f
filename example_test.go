package nvdb_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/nvdb"
	"github.com/hupe1980/nvdb/distance"
)

func exampleConfig(dir string) nvdb.Config {
	cfg := nvdb.DefaultConfig()
	cfg.SegmentsRoot = filepath.Join(dir, "segments")
	cfg.StagingPath = ""
	cfg.Dimension = 3
	cfg.Metric = distance.Euclidean
	return cfg
}

// Example_search inserts three vectors and ranks them against a query.
func Example_search() {
	dir, err := os.MkdirTemp("", "nvdb-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	db, err := nvdb.Open(ctx, exampleConfig(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	for id, vec := range map[uint64][]float32{
		1: {1, 0, 0},
		2: {0, 1, 0},
		3: {1, 1, 0},
	} {
		if err := db.Insert(ctx, id, vec); err != nil {
			log.Fatal(err)
		}
	}

	matches, err := db.Search(ctx, []float32{1, 0.1, 0}, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range matches {
		fmt.Println(m.ID)
	}
	// Output:
	// 1
	// 3
}

// Example_flush commits the resident batch and loads it back as a segment.
func Example_flush() {
	dir, err := os.MkdirTemp("", "nvdb-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	db, err := nvdb.Open(ctx, exampleConfig(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	for i := range 3 {
		if err := db.Insert(ctx, uint64(i+1), []float32{float32(i), 0, 0}); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := db.Flush(ctx); err != nil {
		log.Fatal(err)
	}

	names, err := db.Segments()
	if err != nil {
		log.Fatal(err)
	}

	idx, err := db.LoadSegment(ctx, names[0])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(names), idx.Len(), db.Len())
	// Output: 1 3 0
}
