package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List map providers with their zoom/scale and map type options",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry, err := newRegistry(cfg)
		if err != nil && !errors.Is(err, errMapboxNotConfigured) {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range registry.Names() {
			p, _ := registry.Get(name)
			spec := p.Dialog()

			fmt.Fprintf(out, "%s\n", name)
			fmt.Fprintf(out, "  %s: %s\n", spec.LevelKey, strings.Join(markDefault(spec.LevelOptions, spec.DefaultLevel), ", "))
			fmt.Fprintf(out, "  type: %s\n", strings.Join(markDefault(spec.TypeOptions, spec.DefaultType), ", "))
		}
		if err != nil {
			fmt.Fprintf(out, "\n%v\n", err)
		}
		return nil
	},
}

func markDefault(options []string, def int) []string {
	out := append([]string(nil), options...)
	if def >= 0 && def < len(out) {
		out[def] += " (default)"
	}
	return out
}
