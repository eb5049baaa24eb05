package stability

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes the report to path as indented JSON.
func (r *Report) WriteJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stability: create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("stability: encode report: %w", err)
	}
	return nil
}
