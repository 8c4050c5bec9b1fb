package cli

import (
	"github.com/spf13/cobra"

	"github.com/baileyrd/naner-sub002/internal/launch"
)

var launchShell string

func newLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start a terminal session with installed vendors on PATH",
		RunE:  runLaunch,
	}
	cmd.Flags().StringVar(&launchShell, "shell", "", "Shell executable to start (default pwsh on windows, $SHELL elsewhere)")
	return cmd
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	return launch.Shell(cmd.Context(), p, launchShell)
}
