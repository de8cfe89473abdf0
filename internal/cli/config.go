package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Davincible/rscodec/internal/validation"
	"github.com/Davincible/rscodec/pkg/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the rscodec configuration",
		Long: `Manage the configuration file holding the default codec parameters,
trial settings and saved codec profiles.

The file lives at $RSCODEC_CONFIG, $XDG_CONFIG_HOME/rscodec/config.json or
~/.config/rscodec/config.json, in that order.`,
		Example: `  # Show the current configuration
  rscodec config show

  # Make GF(256) the default field
  rscodec config set poly 285

  # Save a named profile
  rscodec config profile add ccsds --poly 391 --first-root 112 --block 255 --message 223`,
	}

	cmd.AddCommand(
		newConfigShowCommand(),
		newConfigSetCommand(),
		newConfigResetCommand(),
		newConfigProfileCommand(),
	)

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			w := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan, color.Bold)

			cyan.Fprintf(w, "Configuration (%s)\n", cm.Path())
			fmt.Fprintf(w, "  poly:         %d\n", cfg.Defaults.GeneratorPoly)
			fmt.Fprintf(w, "  first-root:   %d\n", cfg.Defaults.FirstRoot)
			fmt.Fprintf(w, "  block:        %d\n", cfg.Defaults.BlockSize)
			fmt.Fprintf(w, "  message:      %d\n", cfg.Defaults.MessageSize)
			fmt.Fprintf(w, "  runs:         %d\n", cfg.Trial.Runs)
			fmt.Fprintf(w, "  seed:         %d\n", cfg.Trial.Seed)
			fmt.Fprintf(w, "  workers:      %d\n", cfg.Trial.Workers)
			fmt.Fprintf(w, "  color:        %t\n", cfg.UI.UseColor)
			fmt.Fprintf(w, "  progress:     %t\n", cfg.UI.Progress)
			fmt.Fprintf(w, "  verbosity:    %s\n", cfg.UI.Verbosity)
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Long: `Change one configuration value. Keys are the names printed by
'rscodec config show': poly, first-root, block, message, runs, seed,
workers, color, progress and verbosity (quiet, normal or verbose).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}

			updated := *cm.GetConfig()
			if err := setConfigValue(&updated, args[0], args[1]); err != nil {
				return err
			}
			if err := config.ValidateCodec(updated.Defaults); err != nil {
				return fmt.Errorf("invalid default codec: %w", err)
			}

			cm.SetConfig(&updated)
			if err := cm.SaveConfig(); err != nil {
				return err
			}

			color.Green("✓ %s set to %s", args[0], args[1])
			return nil
		},
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	key = strings.ToLower(key)
	switch key {
	case "color", "progress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if key == "color" {
			cfg.UI.UseColor = b
		} else {
			cfg.UI.Progress = b
		}
		return nil
	case "verbosity":
		v := strings.ToLower(value)
		if err := config.ValidateVerbosity(v); err != nil {
			return err
		}
		cfg.UI.Verbosity = v
		return nil
	case "seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Trial.Seed = n
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	switch key {
	case "poly":
		cfg.Defaults.GeneratorPoly = n
	case "first-root":
		cfg.Defaults.FirstRoot = n
	case "block":
		cfg.Defaults.BlockSize = n
	case "message":
		cfg.Defaults.MessageSize = n
	case "runs":
		cfg.Trial.Runs = n
	case "workers":
		cfg.Trial.Workers = n
	default:
		return fmt.Errorf("unknown configuration key '%s'", key)
	}
	return nil
}

func newConfigResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			cm.SetConfig(config.DefaultConfig())
			if err := cm.SaveConfig(); err != nil {
				return err
			}
			color.Green("✓ Configuration reset to defaults")
			return nil
		},
	}
}

func newConfigProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved codec profiles",
	}

	cmd.AddCommand(
		newProfileAddCommand(),
		newProfileListCommand(),
		newProfileDeleteCommand(),
	)

	return cmd
}

func newProfileAddCommand() *cobra.Command {
	var (
		flags       codecFlags
		description string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a codec profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			settings, err := flags.resolve(cmd, cm)
			if err != nil {
				return err
			}

			// Build the codec once so a non-primitive polynomial is rejected here
			codec, err := buildCodec(settings.GeneratorPoly, settings.FirstRoot, settings.BlockSize-settings.MessageSize)
			if err != nil {
				return err
			}
			if err := validation.ValidateCodecParams(codec.FieldOrder(), settings.BlockSize, settings.MessageSize); err != nil {
				return err
			}

			profile := &config.Profile{
				Name:        args[0],
				Description: description,
				Codec:       settings,
				Tags:        tags,
			}
			if err := cm.AddProfile(profile); err != nil {
				return err
			}

			color.Green("✓ Profile '%s' saved", profile.Name)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&description, "description", "d", "", "Profile description")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Profile tags")

	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved codec profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			profiles := cm.ListProfiles()

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), profiles)
			}

			w := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(w, "No profiles saved")
				return nil
			}

			cyan := color.New(color.FgCyan, color.Bold)
			for _, p := range profiles {
				cyan.Fprintf(w, "%s", p.Name)
				fmt.Fprintf(w, "  RS(%d,%d) poly=%d first-root=%d",
					p.Codec.BlockSize, p.Codec.MessageSize, p.Codec.GeneratorPoly, p.Codec.FirstRoot)
				if p.Description != "" {
					fmt.Fprintf(w, "  %s", p.Description)
				}
				if len(p.Tags) > 0 {
					fmt.Fprintf(w, "  [%s]", strings.Join(p.Tags, ", "))
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
}

func newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved codec profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			if err := cm.DeleteProfile(args[0]); err != nil {
				return err
			}
			color.Green("✓ Profile '%s' deleted", args[0])
			return nil
		},
	}
}
