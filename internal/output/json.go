package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONResponse is the envelope of every JSON document the CLI prints
type JSONResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON wraps data, or err when it is non-nil, in a JSONResponse
func WriteJSON(w io.Writer, data any, err error) error {
	response := JSONResponse{
		Success: err == nil,
		Data:    data,
	}
	if err != nil {
		response.Error = err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if encodeErr := encoder.Encode(response); encodeErr != nil {
		return fmt.Errorf("failed to encode JSON: %w", encodeErr)
	}
	return nil
}
