package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/BeatLink/internal/config"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show which credentials are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range cfg.Status() {
				state := "Missing"
				if s.Set {
					state = "Set"
				}
				fmt.Fprintf(out, "%-24s %s\n", s.Name+":", state)
			}

			profile, err := cfg.JobProfile()
			if err != nil {
				return err
			}
			actor := profile.Actor
			if actor == "" {
				actor = "(not set)"
			}
			fmt.Fprintf(out, "%-24s %s (actor %s)\n", "Job profile:", profile.Name, actor)
			fmt.Fprintf(out, "%-24s %s\n", "Built-in profiles:", strings.Join(audio.BuiltinProfiles(), ", "))
			fmt.Fprintf(out, "%-24s %s\n", "Temp dir:", cfg.Audio.TempDir)
			return nil
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Print an annotated sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
			return err
		},
	})

	return configCmd
}
