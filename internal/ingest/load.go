package ingest

import (
	"fmt"
	"io"
	"os"
)

// StdinPath is the path argument that selects standard input.
const StdinPath = "-"

// Load reads and decodes the document at path, or from stdin when path is
// StdinPath.
func Load(path string, format Format, stdin io.Reader) (*Document, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	return Parse(path, data, format)
}

// Parse decodes data and wraps it as a Document. name is only used to
// detect the format when format is FormatAuto.
func Parse(name string, data []byte, format Format) (*Document, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(name, data)
	}
	root, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return NewDocument(root)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", ErrIO, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return data, nil
}
