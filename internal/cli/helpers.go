package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// readInput decodes an analysis input document from path, or from stdin
// when path is "-" or empty.
func readInput(path string) (*domain.AnalysisInput, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var input domain.AnalysisInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return &input, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
