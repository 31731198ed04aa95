package cmd

import (
	"fmt"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

var qualityTasks = []struct {
	use   string
	short string
	run   func() error
}{
	{use: "test", short: "run unit tests", run: func() error { return test.Test() }},
	{use: "lint", short: "run linters", run: func() error { return test.Lint() }},
	{use: "integration-test", short: "run tests against attached hardware", run: func() error { return test.Integ() }},
}

// QualityCmds returns one command per test or lint task.
func QualityCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(qualityTasks))
	for _, task := range qualityTasks {
		cmds = append(cmds, &cobra.Command{
			Use:   task.use,
			Short: task.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := task.run(); err != nil {
					return fmt.Errorf("%s failed: %w", task.use, err)
				}
				return nil
			},
		})
	}
	return cmds
}
