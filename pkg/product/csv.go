package product

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// LoadDrafts reads product drafts from a CSV file with a
// product_number,name header.
func LoadDrafts(path string) ([]Draft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drafts file: %w", err)
	}
	defer file.Close()

	var drafts []Draft
	if err := gocsv.UnmarshalFile(file, &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse drafts from %s: %w", path, err)
	}

	return drafts, nil
}
