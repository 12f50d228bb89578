package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/xreportgo/internal/schema"
)

// JSONLoader loads report specs from the JSON document format.
type JSONLoader struct{}

// LoadBytes implements Loader.
func (l *JSONLoader) LoadBytes(_ context.Context, src []byte, filename string) (*schema.ReportSpec, error) {
	var raw map[string]any
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON spec %s: %w", filename, err)
	}
	spec, err := buildReport(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid report spec %s: %w", filename, err)
	}
	return spec, nil
}
