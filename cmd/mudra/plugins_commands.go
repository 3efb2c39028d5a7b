package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
)

func newPluginsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect gesture plugins",
	}
	cmd.AddCommand(newPluginsListCommand(ctx))
	return cmd
}

func newPluginsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and external plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			// A detector-less pipeline is enough to enumerate the registry.
			a, err := app.New(cfg, app.Deps{
				Detector: detector.NewMockDetector(),
				Store:    st,
				Logger:   logging.Discard(),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			rows := make([][]string, 0)
			for _, info := range a.Registry().Plugins() {
				rows = append(rows, []string{info.Name, yesNo(info.Enabled), strings.Join(info.Capabilities, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"Plugin", "Enabled", "Capabilities"}, rows, nil))

			externals := a.Externals().List()
			if len(externals) == 0 {
				fmt.Fprintf(out, "No external plugins in %s\n", cfg.Storage.PluginDir)
				return nil
			}
			rows = rows[:0]
			for _, ext := range externals {
				rows = append(rows, []string{ext.Manifest.Name, ext.Manifest.Version, strings.Join(ext.Manifest.Actions, ", "), ext.Manifest.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"External", "Version", "Actions", "Description"}, rows, nil))
			return nil
		},
	}
}
