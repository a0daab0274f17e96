package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectError    bool
	}{
		{
			name:           "help flag",
			args:           []string{"--help"},
			expectedOutput: "mapgen geocodes an address",
			expectError:    false,
		},
		{
			name:           "short help flag",
			args:           []string{"-h"},
			expectedOutput: "mapgen geocodes an address",
			expectError:    false,
		},
		{
			name:           "invalid flag",
			args:           []string{"--invalid-flag"},
			expectedOutput: "unknown flag: --invalid-flag",
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a new root command for each test to avoid state pollution
			cmd := newRootCommand()

			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			output := buf.String()

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !strings.Contains(output, tt.expectedOutput) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.expectedOutput, output)
			}
		})
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := newRootCommand()

	flags := []string{"config", "log-level", "log-format"}
	for _, flag := range flags {
		if f := cmd.PersistentFlags().Lookup(flag); f == nil {
			t.Errorf("expected persistent flag %q to be defined", flag)
		}
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCommand()

	expectedCommands := []string{"generate", "providers", "prefs", "migrate", "version"}
	for _, cmdName := range expectedCommands {
		found := false
		for _, subCmd := range cmd.Commands() {
			if subCmd.Name() == cmdName {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", cmdName)
		}
	}
}

// newRootCommand creates a fresh root command for testing. The subcommands
// are package-level variables, so they are detached from any previous
// parent and their flags are reset to the defaults.
func newRootCommand() *cobra.Command {
	testRootCmd := &cobra.Command{
		Use:          rootCmd.Use,
		Short:        rootCmd.Short,
		Long:         rootCmd.Long,
		SilenceUsage: true,
	}

	configPath, logLevel, logFormat = "", "", ""
	addPersistentFlags(testRootCmd)

	subcommands := []*cobra.Command{generateCmd, providersCmd, prefsCmd, migrateCmd, versionCmd}
	for _, sub := range subcommands {
		if sub.HasParent() {
			sub.Parent().RemoveCommand(sub)
		}
		resetFlags(sub)
		testRootCmd.AddCommand(sub)
	}

	return testRootCmd
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
