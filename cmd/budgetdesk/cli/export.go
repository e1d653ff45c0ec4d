package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgetdesk/budgetdesk/internal/report"
)

type exportOptions struct {
	project string
	format  string
	out     string
}

func newExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a project report to a file",
		Example: `  budgetdesk export --project 7c1f... --format pdf
  budgetdesk export --project 7c1f... --format json --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			svc, err := rt.buildServices(cmd.Context(), false, nil)
			if err != nil {
				return err
			}
			defer svc.close(rt.logger)

			artifact, err := svc.reports.GenerateArtifact(cmd.Context(), opts.project, format)
			if err != nil {
				return err
			}
			if opts.out == "-" {
				_, err = cmd.OutOrStdout().Write(artifact.Body)
				return err
			}
			path, err := writeArtifact(opts.out, artifact)
			if err != nil {
				return err
			}
			rt.logger.Info("report exported", slog.String("project_id", opts.project), slog.String("path", path))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.project, "project", "", "project id")
	cmd.Flags().StringVar(&opts.format, "format", string(report.FormatHTML), "html, pdf or json")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file, directory, or - for stdout (default: generated name in the working directory)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// writeArtifact resolves out to a file path and writes the artifact there.
func writeArtifact(out string, artifact report.Artifact) (string, error) {
	path := out
	switch {
	case path == "":
		path = artifact.Filename
	default:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, artifact.Filename)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
