package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/haatos/pipeline-composer/internal/predefined"
	"github.com/haatos/pipeline-composer/internal/service"
	"github.com/spf13/cobra"
)

var validateFiles []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks that definitions render and reports their jobs and stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateDefinitions(cmd.OutOrStdout(), validateFiles)
	},
}

func init() {
	validateCmd.Flags().StringArrayVarP(&validateFiles, "file", "f", nil, "Path to a definition. May be repeated.")
	_ = validateCmd.MarkFlagRequired("file")
}

func validateDefinitions(out io.Writer, files []string) error {
	s := service.NewRenderService(predefined.EnvResolver{})
	for _, file := range files {
		b, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return err
		}
		rendered, err := s.Validate(b)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		fmt.Fprintf(out, "%s: %d jobs, stages: %s\n", file, rendered.Jobs, strings.Join(rendered.Stages, ", "))
	}
	return nil
}
