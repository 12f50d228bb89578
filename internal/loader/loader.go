// Package loader reads report specification documents and translates them
// into the format-agnostic schema model. JSON is the primary format; YAML
// and HCL documents describe the same structures and load to identical
// models.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/schema"
)

// Loader is the interface for a format-specific spec loader.
type Loader interface {
	// LoadBytes parses src (named filename for diagnostics) into the
	// format-agnostic model.
	LoadBytes(ctx context.Context, src []byte, filename string) (*schema.ReportSpec, error)
}

// ForPath selects a loader by file extension.
func ForPath(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONLoader{}, nil
	case ".yaml", ".yml":
		return &YAMLLoader{}, nil
	case ".hcl":
		return &HCLLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported spec format %q (want .json, .yaml, or .hcl)", filepath.Ext(path))
	}
}

// FromFile loads a report spec from disk, dispatching on the extension.
func FromFile(ctx context.Context, path string) (*schema.ReportSpec, error) {
	logger := ctxlog.FromContext(ctx)
	ldr, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	spec, err := ldr.LoadBytes(ctx, src, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	logger.Debug("Report spec loaded.", "path", path, "name", spec.Name, "sections", len(spec.Contents), "writers", len(spec.Writers))
	return spec, nil
}
