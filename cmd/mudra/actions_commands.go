package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

func newActionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Manage gesture action bindings",
	}
	cmd.AddCommand(newActionsListCommand(ctx))
	cmd.AddCommand(newActionsAddCommand(ctx))
	cmd.AddCommand(newActionsRemoveCommand(ctx))
	return cmd
}

func newActionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List action bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			actions, err := st.Actions().List()
			if err != nil {
				return fmt.Errorf("list actions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(actions) == 0 {
				fmt.Fprintln(out, "No actions bound")
				return nil
			}

			rows := make([][]string, 0, len(actions))
			for _, a := range actions {
				config := string(a.Config)
				if config == "" {
					config = "{}"
				}
				rows = append(rows, []string{a.ID, a.Gesture, a.PluginName, a.ActionName, config, yesNo(a.Enabled)})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Gesture", "Plugin", "Action", "Config", "Enabled"}, rows, nil))
			return nil
		},
	}
}

func newActionsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		gestureName string
		pluginName  string
		actionName  string
		configJSON  string
		disabled    bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Bind an external plugin action to a gesture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(pluginName) == "" || strings.TrimSpace(actionName) == "" {
				return errors.New("--plugin and --action are required")
			}
			label := gesture.NormalizeLabel(gestureName)
			if label == gesture.None {
				return fmt.Errorf("unknown gesture %q", gestureName)
			}

			var params json.RawMessage
			if configJSON != "" {
				if !json.Valid([]byte(configJSON)) {
					return fmt.Errorf("--params is not valid JSON")
				}
				params = json.RawMessage(configJSON)
			}

			if !force {
				if err := checkExternal(ctx, pluginName, actionName); err != nil {
					return fmt.Errorf("%w (use --force to bind anyway)", err)
				}
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ok, err := st.Gestures().Exists(string(label))
			if err != nil {
				return fmt.Errorf("check gesture: %w", err)
			}
			if !ok {
				return fmt.Errorf("gesture %q cannot be bound", label)
			}

			action := &store.Action{
				Gesture:    string(label),
				PluginName: pluginName,
				ActionName: actionName,
				Config:     params,
				Enabled:    !disabled,
			}
			if err := st.Actions().Create(action); err != nil {
				return fmt.Errorf("create action: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bound %s to %s/%s (%s)\n", label, pluginName, actionName, action.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&gestureName, "gesture", "g", "", "Gesture label, e.g. Thumb_Up, Victory or OK")
	cmd.Flags().StringVarP(&pluginName, "plugin", "p", "", "External plugin name")
	cmd.Flags().StringVarP(&actionName, "action", "a", "", "Action declared by the plugin")
	cmd.Flags().StringVar(&configJSON, "params", "", "JSON parameters passed to the plugin")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the binding disabled")
	cmd.Flags().BoolVar(&force, "force", false, "Skip checking that the plugin declares the action")
	_ = cmd.MarkFlagRequired("gesture")
	return cmd
}

func checkExternal(ctx *commandContext, pluginName, actionName string) error {
	m, err := ctx.externals(logging.Discard())
	if err != nil {
		return err
	}
	p, err := m.Get(pluginName)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return fmt.Errorf("plugin %q not found in %s", pluginName, m.PluginDir())
		}
		return err
	}
	if !p.Manifest.HasAction(actionName) {
		return fmt.Errorf("plugin %q does not declare action %q", pluginName, actionName)
	}
	return nil
}

func newActionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an action binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Actions().Delete(args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("action %s not found", args[0])
				}
				return fmt.Errorf("remove action: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed action %s\n", args[0])
			return nil
		},
	}
}
