package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

// binaries are the deployable entry points under cmd/.
var binaries = []string{"server", "sweeper"}

func BuildCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "build [binary...]",
		Short: "Build the server and sweeper binaries into bin/",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = binaries
			}
			return build(outDir, args)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "bin", "Output directory")
	return cmd
}

func build(outDir string, names []string) error {
	for _, name := range names {
		src := "./cmd/" + name
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("unknown binary %q", name)
		}

		fmt.Println("==> Building", name)
		err := run("go", "build", "-trimpath", "-o", filepath.Join(outDir, name), src)
		if err != nil {
			return fmt.Errorf("go build %s failed: %w", name, err)
		}
	}
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
