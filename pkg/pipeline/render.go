package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/render"
	"github.com/matzehuels/flowlens/pkg/render/graphviz"
	"github.com/matzehuels/flowlens/pkg/render/mermaid"
	"github.com/matzehuels/flowlens/pkg/render/plantuml"
)

// ValidateTool checks that a diagram tool is supported.
func ValidateTool(tool string) error {
	if !slices.Contains(Tools, tool) {
		return errors.New(errors.ErrCodeInvalidTool, "Unsupported diagram tool: %s. Valid options are: %s", tool, strings.Join(Tools, ", "))
	}
	return nil
}

// ValidateFormats checks that every format is known and can be produced by
// tool. Empty input is valid.
func ValidateFormats(tool string, formats []string) error {
	for _, f := range formats {
		switch f {
		case FormatText:
		case FormatSVG, FormatPNG:
			if tool != ToolGraphviz {
				return errors.New(errors.ErrCodeInvalidFormat, "format %s requires the graphviz diagram tool", f)
			}
		default:
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, svg, png)", f)
		}
	}
	return nil
}

// NewBackend returns the diagram backend for tool.
func NewBackend(tool string) (render.Backend, error) {
	switch tool {
	case ToolGraphviz:
		return graphviz.New(), nil
	case ToolPlantUML:
		return plantuml.New(), nil
	case ToolMermaid:
		return mermaid.New(), nil
	}
	return nil, ValidateTool(tool)
}

// rasterise converts Graphviz DOT source to an image format.
func rasterise(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return graphviz.RenderSVG(ctx, dot)
	case FormatPNG:
		return graphviz.RenderPNG(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported artifact format: %s", format)
}
