package cmd

import (
	"fmt"
	"sort"

	"github.com/Togather-Foundation/mapgen/internal/config"
	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/spf13/cobra"
)

var (
	prefsCmd = &cobra.Command{
		Use:   "prefs",
		Short: "Show or clear remembered settings",
		Long: `Remembered settings are stored per provider in the configured
preferences backend (memory, file, postgres or valkey).`,
	}

	prefsShowCmd = &cobra.Command{
		Use:   "show <provider>",
		Short: "Print the remembered settings of a provider",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrefsShow,
	}

	prefsClearCmd = &cobra.Command{
		Use:   "clear <provider>",
		Short: "Forget the remembered settings of a provider",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrefsClear,
	}
)

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsClearCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	namespace := args[0]
	if !knownProvider(namespace) {
		return fmt.Errorf("%w: %q", staticmap.ErrUnknownProvider, namespace)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cmd.Context(), cfg, config.NewLogger(cfg.Logging))
	if err != nil {
		return err
	}
	defer st.Close()

	values, err := st.prefs.All(cmd.Context(), namespace)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(values) == 0 {
		fmt.Fprintf(out, "no settings remembered for %s\n", namespace)
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%s\n", k, values[k])
	}
	return nil
}

func runPrefsClear(cmd *cobra.Command, args []string) error {
	namespace := args[0]
	if !knownProvider(namespace) {
		return fmt.Errorf("%w: %q", staticmap.ErrUnknownProvider, namespace)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cmd.Context(), cfg, config.NewLogger(cfg.Logging))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.prefs.Clear(cmd.Context(), namespace); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared settings for %s\n", namespace)
	return nil
}
