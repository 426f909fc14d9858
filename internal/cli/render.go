package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/render"
	"github.com/mixprof/mixprof/pkg/viewer"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output base path (default: input without extension)
	formats     string // comma-separated output formats
	interactive bool   // also write the standalone HTML viewer
	open        bool   // open the result when done
}

// renderCommand creates the render command for turning DOT files into images.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [dotfile]",
		Short: "Render a DOT call graph to SVG, PNG, or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "also write an interactive HTML viewer")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the rendered image when done")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, dotPath string, opts *renderOpts) error {
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		return err
	}

	formats, err := parseFormats(opts.formats, c.Config.Formats)
	if err != nil {
		return err
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(dotPath, filepath.Ext(dotPath))
	}

	p := newProgress(c.Logger)
	var written []string

	for _, format := range formats {
		var data []byte
		switch format {
		case render.FormatSVG:
			data, err = render.SVG(ctx, dot)
		case render.FormatPNG:
			data, err = render.PNG(ctx, dot, 2.0)
		case render.FormatPDF:
			data, err = render.PDF(ctx, dot)
		}
		if err != nil {
			return err
		}

		outPath := base + "." + string(format)
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return err
		}
		written = append(written, outPath)

		if opts.interactive && format == render.FormatSVG {
			page, err := render.WrapHTML(filepath.Base(base), data)
			if err != nil {
				return err
			}
			htmlPath := base + "_interactive.html"
			if err := os.WriteFile(htmlPath, page, 0644); err != nil {
				return err
			}
			written = append(written, htmlPath)
		}
	}
	p.done("Rendered call graph")

	printSuccess("Rendered %s", dotPath)
	for _, path := range written {
		printFile(path)
	}

	if opts.open && len(written) > 0 {
		return viewer.Open(openTarget(written))
	}
	return nil
}
