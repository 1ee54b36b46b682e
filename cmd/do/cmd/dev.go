package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the API server with air hot-reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8090", "Port the API server listens on")
	return cmd
}

// runDev replaces the current process with air, rebuilding cmd/server on
// changes to Go sources and migrations.
func runDev(port string) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Fprintln(os.Stderr, "air is not installed: go install github.com/air-verse/air@latest")
		return errors.New("air not found")
	}

	args := []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,data,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,sql",
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
	}

	env := append(os.Environ(), "PORT="+port, "APP_ENV=development")
	return syscall.Exec(airPath, args, env)
}
