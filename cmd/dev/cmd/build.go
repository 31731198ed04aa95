package cmd

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

const (
	binary        = "dist/ltc2473"
	mainPackage   = "./cmd/ltc2473"
	configPackage = "github.com/mklimuk/ltc2473/config"
	builderImage  = "gophertribe/gobuild:1.25-bookworm"
)

// BuildCmd builds the cli natively or, for a foreign target, inside the
// builder container. The hid adapter needs cgo so cross builds cannot use the
// host toolchain.
func BuildCmd() *cobra.Command {
	var (
		targetOS, targetArch string
		crossOS, crossArch   string
		version              string
		noCache              bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "build the ltc2473 cli into " + binary,
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetOS == runtime.GOOS && targetArch == runtime.GOARCH {
				if crossOS != "" && crossArch != "" {
					targetOS, targetArch = crossOS, crossArch
				}
				slog.Info("building", "target", binary, "version", version)
				return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
					Version:       version,
					InjectVersion: true,
					ConfigPackage: configPackage,
					EnableCgo:     true,
					OS:            targetOS,
					Arch:          targetArch,
				})
			}
			slog.Info("building in container", "os", targetOS, "arch", targetArch, "image", builderImage)
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", targetOS, targetArch),
				[]string{"build", "--version", version, "--cross-os", crossOS, "--cross-arch", crossArch},
				build.DockerBuildOpts{
					NoCache: noCache,
					Image:   builderImage,
				})
		},
	}
	cmd.Flags().StringVar(&version, "version", "latest", "version injected into the binary")
	cmd.Flags().StringVar(&targetOS, "os", runtime.GOOS, "target os")
	cmd.Flags().StringVar(&targetArch, "arch", runtime.GOARCH, "target arch")
	cmd.Flags().StringVar(&crossOS, "cross-os", "", "os to cross-compile for inside the container")
	cmd.Flags().StringVar(&crossArch, "cross-arch", "", "arch to cross-compile for inside the container")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use the docker build cache")
	return cmd
}
