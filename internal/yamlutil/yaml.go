// Package yamlutil reads and writes html2pptx config files with goccy/go-yaml.
// Input is size-capped; files are decoded strictly so misspelled keys are
// reported instead of silently ignored.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// DecodeFile strictly decodes the file at path into v. Files larger than
// MaxInputSize are rejected before being read in full; a missing file
// returns an error matching os.ErrNotExist.
func DecodeFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// One extra byte tells an exactly-full file from an oversized one.
	data, err := io.ReadAll(io.LimitReader(f, int64(MaxInputSize)+1))
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %s (max %d bytes)", ErrInputTooLarge, path, MaxInputSize)
	}
	return UnmarshalStrict(data, v)
}

// Encode writes v as YAML with two-space indentation and indented lists,
// the layout used by the sample config files.
func Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2), yaml.IndentSequence(true))
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
