package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "restpad:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "restpad",
		Short:         "Compose and send HTTP requests from the terminal",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	bindFlags(root.PersistentFlags(), opts)

	root.AddCommand(
		newSendCmd(opts),
		newImportCurlCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newListCmd(opts),
	)
	return root
}

func runTUI(cmd *cobra.Command, opts *options) error {
	logFile, err := openLogFile(config.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	rt, err := openRuntime(cmd, opts, logFile)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctrl, err := rt.controller(ctx)
	if err != nil {
		return err
	}

	keys, source, err := bindings.Load(config.Dir())
	if err != nil {
		rt.log.Warn("bindings load error", "path", source.Path, "err", err)
		keys = bindings.DefaultMap()
	}

	model := ui.New(ui.Config{
		Controller: ctrl,
		Bindings:   keys,
		Layout:     rt.settings.Layout,
		Version:    version,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
