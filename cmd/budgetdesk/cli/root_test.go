package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/budgetdesk/budgetdesk/internal/app"
	"github.com/budgetdesk/budgetdesk/internal/report"
	"github.com/budgetdesk/budgetdesk/internal/testing/guard"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	names := map[string]*cobra.Command{}
	for _, c := range root.Commands() {
		names[c.Name()] = c
	}
	for _, want := range []string{"serve", "worker", "migrate", "export", "seed"} {
		require.Contains(t, names, want)
	}
	require.NotNil(t, names["export"].Flags().Lookup("project"))
	require.NotNil(t, names["export"].Flags().Lookup("format"))
	require.NotNil(t, names["migrate"].Flags().Lookup("down"))
	require.NotNil(t, names["serve"].Flags().Lookup("migrate"))
}

func TestExportRequiresProject(t *testing.T) {
	_, err := execute(t, "export")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"project"`)
}

func TestServeAndWorkerSkipStartupInTestMode(t *testing.T) {
	guard.Enable()
	app.RefreshTestMode()
	require.True(t, app.InTestMode())

	_, err := execute(t, "serve")
	require.NoError(t, err)
	_, err = execute(t, "worker")
	require.NoError(t, err)
}

func TestRuntimeMissing(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err := runtimeFrom(cmd)
	require.Error(t, err)
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	artifact := report.Artifact{Filename: "project-OF-1-20240615.html", Body: []byte("<h1>ok</h1>")}

	path, err := writeArtifact(dir, artifact)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, artifact.Filename), path)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, artifact.Body, body)

	explicit := filepath.Join(dir, "custom.html")
	path, err = writeArtifact(explicit, artifact)
	require.NoError(t, err)
	require.Equal(t, explicit, path)
}
