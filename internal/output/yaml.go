package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML prints data as a YAML document
func WriteYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
