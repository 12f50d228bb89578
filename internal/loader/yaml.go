package loader

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/xreportgo/internal/schema"
)

// YAMLLoader loads report specs from YAML documents. The document mirrors
// the JSON format field for field.
type YAMLLoader struct{}

// LoadBytes implements Loader.
func (l *YAMLLoader) LoadBytes(_ context.Context, src []byte, filename string) (*schema.ReportSpec, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML spec %s: %w", filename, err)
	}
	spec, err := buildReport(normalize(raw).(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("invalid report spec %s: %w", filename, err)
	}
	return spec, nil
}

// normalize rewrites yaml.v3's decoded integers to float64 so both decoders
// feed buildReport identical shapes.
func normalize(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(tv)
	case int64:
		return float64(tv)
	default:
		return v
	}
}
