package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/definition"
	"github.com/haatos/pipeline-composer/internal/pipeline"
	"github.com/haatos/pipeline-composer/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	renderFiles  []string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Renders definitions to GitLab CI configuration",
	Long: `Renders each definition given with -f. A single definition is written to
generated-config.yml or to the file named by -o. Several definitions are
written beside their inputs as <name>.gitlab-ci.yml, or into the directory
named by -o.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderDefinitions(cmd.Context(), renderFiles, renderOutput)
	},
}

func init() {
	renderCmd.Flags().StringArrayVarP(&renderFiles, "file", "f", nil, "Path to a definition. May be repeated.")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file, or output directory for several definitions.")
	_ = renderCmd.MarkFlagRequired("file")
}

func renderDefinitions(ctx context.Context, files []string, output string) error {
	outputs, err := outputPaths(files, output)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			return renderFile(ctx, file, outputs[i])
		})
	}
	return g.Wait()
}

// renderFile returns the error of ctx instead of writing once ctx is done.
func renderFile(ctx context.Context, file, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := definition.Load(file)
	if err != nil {
		return err
	}
	p, err := doc.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.WriteFile(output); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	slog.Info("pipeline written", "definition", file, "output", output)
	return nil
}

// outputPaths returns the file each definition in files is written to.
func outputPaths(files []string, output string) ([]string, error) {
	if len(files) == 1 {
		switch {
		case output == "":
			return []string{pipeline.DefaultOutputFile}, nil
		case util.IsDir(output):
			return []string{filepath.Join(output, pipeline.DefaultOutputFile)}, nil
		default:
			return []string{output}, nil
		}
	}

	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	outputs := make([]string, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		out := util.ReplaceExt(file, output, internal.RenderFileExt)
		if previous, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", previous, file, out)
		}
		seen[out] = file
		outputs = append(outputs, out)
	}
	return outputs, nil
}
