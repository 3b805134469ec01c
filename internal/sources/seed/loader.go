package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a seed file from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file. Unknown keys are rejected so typos
// do not silently drop fields.
func (l *Loader) Load() (File, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	defer f.Close()

	var file File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return file, nil
}
