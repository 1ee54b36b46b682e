package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/showcase/cmd/do/cmd"
)

func main() {
	rebuildIfStale()

	root := &cobra.Command{
		Use:           "do",
		Short:         "Development tools for the showcase API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(cmd.DevCmd(), cmd.BuildCmd(), cmd.MigrateCmd())

	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// rebuildIfStale recompiles bin/do and re-executes it when any source under
// cmd/do is newer than the running binary.
func rebuildIfStale() {
	exe, err := os.Executable()
	if err != nil || !strings.HasSuffix(exe, filepath.Join("bin", "do")) {
		return
	}

	info, err := os.Stat(exe)
	if err != nil || !newerSources("cmd/do", info.ModTime()) {
		return
	}

	fmt.Println("cmd/do changed, rebuilding bin/do")
	build := exec.Command("go", "build", "-o", exe, "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	err = build.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rebuild failed:", err)
		return
	}

	err = syscall.Exec(exe, os.Args, os.Environ())
	if err != nil {
		fmt.Fprintln(os.Stderr, "re-exec failed:", err)
	}
}

func newerSources(dir string, since time.Time) bool {
	newer := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		info, err := d.Info()
		if err == nil && info.ModTime().After(since) {
			newer = true
			return filepath.SkipAll
		}
		return nil
	})
	return newer
}
