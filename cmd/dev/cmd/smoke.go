package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// SmokeCmd runs the built cli against the simulated converter.
func SmokeCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "run " + binary + " against the simulated adapter",
		Long: `Runs a probe, a mode change and a few reads on the simulated adapter.
Build the binary first with:
  dev build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(binary); err != nil {
				return fmt.Errorf("binary not built: %w", err)
			}
			runs := [][]string{
				{"probe"},
				{"mode", "high"},
				{"read", "--count", fmt.Sprint(count), "--interval", "5ms"},
				{"read", "--count", "1", "--format", "yaml", "--hold"},
				{"mode", "sleep"},
				{"read", "--wake"},
			}
			for _, run := range runs {
				args := append([]string{"--config=", "--adapter", "sim"}, run...)
				slog.Info("running", "args", args)
				c := exec.CommandContext(cmd.Context(), binary, args...)
				c.Stdout = os.Stdout
				c.Stderr = os.Stderr
				if err := c.Run(); err != nil {
					return fmt.Errorf("%v failed: %w", run, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 5, "number of reads")
	return cmd
}
