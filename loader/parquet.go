package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// readParquetRows streams every row of a Parquet file typed T in batches
// rather than reading the whole file in one call.
func readParquetRows[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[T](f)
	defer reader.Close()

	const batchSize = 10000
	var all []T
	batch := make([]T, batchSize)
	for {
		n, err := reader.Read(batch)
		if n > 0 {
			all = append(all, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return all, nil
}
