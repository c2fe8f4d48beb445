// Package output writes the result set at the end of a run.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"remote-jobs-harvester/internal/scraper"
)

// JSONFile writes the whole result set to Path in one go
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Encode renders results as a 2-space indented array. HTML is not escaped
// because content is markup and must stay readable.
func Encode(results scraper.ResultSet) ([]byte, error) {
	if results == nil {
		results = scraper.ResultSet{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *JSONFile) Write(results scraper.ResultSet) error {
	data, err := Encode(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	//create parent directory if not exists
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	log.Printf("📁 Results saved to %s (%d jobs)", f.Path, len(results))
	return nil
}
