package tools

import (
	"context"
	"fmt"

	"github.com/statkit/rsessiond/session"
)

// plotFormats maps accepted raster formats to their MIME types.
var plotFormats = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
}

func (s *Service) currentPlotTool() Tool {
	return Tool{
		Name: "get_current_plot",
		Description: "Capture the current graphics device as an inline image. The capture is " +
			"taken fresh on every call.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"width": map[string]any{
					"type":        "integer",
					"description": "Device width in pixels (default 800)",
				},
				"height": map[string]any{
					"type":        "integer",
					"description": "Device height in pixels (default 600)",
				},
				"format": map[string]any{
					"type":        "string",
					"enum":        []any{"png", "jpeg"},
					"description": "Raster format (default png)",
				},
			},
		},
		Handler: s.handleCurrentPlot,
	}
}

func (s *Service) handleCurrentPlot(ctx context.Context, args map[string]any) (Result, error) {
	width, hasWidth, err := optionalIntArg(args, "width")
	if err != nil {
		return Result{}, err
	}
	height, hasHeight, err := optionalIntArg(args, "height")
	if err != nil {
		return Result{}, err
	}
	format, hasFormat, err := optionalStringArg(args, "format")
	if err != nil {
		return Result{}, err
	}

	if !hasWidth {
		width = DefaultPlotWidth
	}
	if !hasHeight {
		height = DefaultPlotHeight
	}
	if width < 1 || height < 1 {
		return Result{}, fmt.Errorf("%w: width and height must be positive", ErrInvalidArgument)
	}
	if !hasFormat {
		format = DefaultPlotFormat
	}
	mimeType, ok := plotFormats[format]
	if !ok {
		return Result{}, fmt.Errorf("%w: unsupported plot format %q", ErrInvalidArgument, format)
	}

	return s.run(ctx, func(ctx context.Context) (Result, error) {
		// Dimensions pass through to the device unchanged.
		plot, err := s.cfg.Session.CapturePlot(ctx, session.PlotRequest{
			Width:  width,
			Height: height,
			Format: format,
		})
		if err != nil {
			return Result{}, err
		}
		return ImageResult(plot.Data, mimeType), nil
	})
}

func (s *Service) viewerContentTool() Tool {
	return Tool{
		Name:        "get_viewer_content",
		Description: "Return what the viewer pane currently shows: a URL or HTML fragment, or a rendered image.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, _ map[string]any) (Result, error) {
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				vc, err := s.cfg.Session.ViewerContent(ctx)
				if err != nil {
					return Result{}, err
				}
				if len(vc.Data) > 0 {
					mimeType := vc.MIMEType
					if mimeType == "" {
						mimeType = "image/png"
					}
					return ImageResult(vc.Data, mimeType), nil
				}
				return TextResult(vc.Text), nil
			})
		},
	}
}
