package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"esmcat/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(newConfigViewCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

func newConfigViewCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Display configuration profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, exists, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("no configuration found at %s", ConfigPath())
			}
			if !reveal {
				cfg = maskConfig(cfg)
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(out, cfg)
			}

			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				p := cfg.Profiles[name]
				active := ""
				if name == cfg.CurrentProfile {
					active = "*"
				}
				rows = append(rows, []string{
					name, active, p.Output, p.LogLevel, p.Timeout, p.ProbeMethod,
					p.Endpoint, p.Region, p.KeyID, p.Secret,
				})
			}
			PrintTable(out, []string{
				"profile", "active", "output", "log-level", "timeout", "probe",
				"endpoint", "region", "key-id", "secret",
			}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show sensitive values unmasked")

	return cmd
}

// maskConfig returns a copy of the config with sensitive fields masked.
func maskConfig(cfg *UserConfig) *UserConfig {
	masked := &UserConfig{
		CurrentProfile: cfg.CurrentProfile,
		Profiles:       make(map[string]Profile, len(cfg.Profiles)),
	}
	for name, p := range cfg.Profiles {
		p.KeyID = maskSecret(p.KeyID)
		p.Secret = maskSecret(p.Secret)
		masked.Profiles[name] = p
	}
	return masked
}

// maskSecret masks a sensitive string, showing first 4 and last 4 chars.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func newConfigSetCmd() *cobra.Command {
	var (
		name string
		p    Profile
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				if err := validateOutputFormat(p.Output); err != nil {
					return err
				}
			}
			if flags.Changed("timeout") {
				if _, err := time.ParseDuration(p.Timeout); err != nil {
					return fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
				}
			}
			if flags.Changed("probe-method") {
				if err := validateProbeMethod(p.ProbeMethod); err != nil {
					return err
				}
			}

			cfg, _, err := LoadUserConfig()
			if err != nil {
				return err
			}

			existing := cfg.Profiles[name]
			for flag, field := range map[string]*string{
				"output":       &existing.Output,
				"log-level":    &existing.LogLevel,
				"timeout":      &existing.Timeout,
				"probe-method": &existing.ProbeMethod,
				"endpoint":     &existing.Endpoint,
				"region":       &existing.Region,
				"key-id":       &existing.KeyID,
				"secret":       &existing.Secret,
			} {
				if flags.Changed(flag) {
					v, _ := flags.GetString(flag)
					*field = v
				}
			}
			cfg.Profiles[name] = existing

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(out, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, _ = fmt.Fprintf(out, "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&p.Output, "output", "", "Default output format")
	cmd.Flags().StringVar(&p.LogLevel, "log-level", "", "Default log level")
	cmd.Flags().StringVar(&p.Timeout, "timeout", "", "Default network timeout (e.g. 30s)")
	cmd.Flags().StringVar(&p.ProbeMethod, "probe-method", "", "Reachability probe method (head, get); use get for presigned URLs that refuse HEAD with 403")
	cmd.Flags().StringVar(&p.Endpoint, "endpoint", "", "S3-compatible endpoint")
	cmd.Flags().StringVar(&p.Region, "region", "", "S3 region")
	cmd.Flags().StringVar(&p.KeyID, "key-id", "", "S3 access key id")
	cmd.Flags().StringVar(&p.Secret, "secret", "", "S3 secret access key")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func validateProbeMethod(method string) error {
	switch method {
	case "", config.ProbeHead, config.ProbeGet:
		return nil
	}
	return fmt.Errorf("unsupported probe method %q: use %q or %q", method, config.ProbeHead, config.ProbeGet)
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, exists, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("no configuration found at %s", ConfigPath())
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(out, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(out, "Active profile set to %q\n", name)
			return nil
		},
	}
}
