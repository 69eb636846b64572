package cmd

import (
	"fmt"
	"text/tabwriter"

	"dbbrowser/settings"

	"github.com/spf13/cobra"
)

// serviceOpener returns the settings service and a function releasing it
type serviceOpener func() (*settings.Service, func(), error)

func openSettings() (*settings.Service, func(), error) {
	env, err := setup(false)
	if err != nil {
		return nil, nil, err
	}
	return env.settings, env.Close, nil
}

// withService opens the settings around fn
func withService(open serviceOpener, fn func(*settings.Service) error) error {
	svc, release, err := open()
	if err != nil {
		return err
	}
	defer release()
	return fn(svc)
}

func newSettingsCmd(open serviceOpener) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write preferences without starting the browser",
	}

	getCmd := &cobra.Command{
		Use:   "get GROUP/NAME",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := settings.ParseKey(args[0])
			if err != nil {
				return err
			}
			return withService(open, func(svc *settings.Service) error {
				v, err := svc.Value(key.Group, key.Name)
				if err != nil {
					return err
				}
				if !v.IsValid() {
					return fmt.Errorf("%w: %s", settings.ErrUnknownSetting, key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}

	var kindName string
	setCmd := &cobra.Command{
		Use:   "set GROUP/NAME VALUE",
		Short: "Store a setting",
		Long: `Store a setting. The value kind is taken from the setting's default,
or from --kind for settings without one. Lists are comma separated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := settings.ParseKey(args[0])
			if err != nil {
				return err
			}
			kind, err := valueKind(key, kindName)
			if err != nil {
				return err
			}
			v, err := settings.ParseValue(kind, args[1])
			if err != nil {
				return err
			}
			return withService(open, func(svc *settings.Service) error {
				return svc.SetValue(key.Group, key.Name, v)
			})
		},
	}
	setCmd.Flags().StringVarP(&kindName, "kind", "k", "", "value kind: string, bool or stringlist")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every known or stored setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(open, func(svc *settings.Service) error {
				keys, err := svc.Keys()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, key := range keys {
					v, err := svc.Value(key.Group, key.Name)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", key, v.Kind(), v)
				}
				return w.Flush()
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset GROUP/NAME",
		Short: "Restore a setting to its default",
		Long: `Restore a setting to its default. Settings without a default are
removed from the store.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := settings.ParseKey(args[0])
			if err != nil {
				return err
			}
			return withService(open, func(svc *settings.Service) error {
				return svc.Reset(key.Group, key.Name)
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write all settings to a .json, .yaml or .toml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc *settings.Service) error {
				if err := svc.ExportTo(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported settings to %s\n", args[0])
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load settings from a file written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc *settings.Service) error {
				n, err := svc.ImportFrom(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d settings\n", n)
				return nil
			})
		},
	}

	settingsCmd.AddCommand(getCmd, setCmd, listCmd, resetCmd, exportCmd, importCmd)
	return settingsCmd
}

// valueKind resolves the kind a new value for key is parsed as
func valueKind(key settings.Key, kindName string) (settings.Kind, error) {
	if kindName != "" {
		return settings.ParseKind(kindName)
	}
	if def := settings.Default(key.Group, key.Name); def.IsValid() {
		return def.Kind(), nil
	}
	return settings.KindString, nil
}
