package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/cmd/soft-lfs/admin"
	"github.com/charmbracelet/soft-lfs/cmd/soft-lfs/serve"
	"github.com/charmbracelet/soft-lfs/cmd/soft-lfs/user"
	"github.com/charmbracelet/soft-lfs/pkg/config"
	logr "github.com/charmbracelet/soft-lfs/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

func init() {
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
}

// newRootCmd builds the command tree. Each call returns fresh commands so
// that no context survives from a previous execution.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "soft-lfs",
		Short:        "A Git LFS server handing out signed object store URLs",
		Long:         "Soft LFS answers Git LFS batch requests with time-limited signed URLs to an S3 bucket.",
		SilenceUsage: true,
		Version:      Version,
	}

	rootCmd.AddCommand(
		manCommand(rootCmd),
		serve.Command(),
		user.Command(),
		admin.Command(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}

	return rootCmd
}

func main() {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			log.Fatal("parse config file", "err", err)
		}
	}

	if err := cfg.ParseEnv(); err != nil {
		log.Fatal("parse environment", "err", err)
	}

	ctx = config.WithContext(ctx, cfg)
	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		log.Errorf("failed to create logger: %v", err)
	} else {
		// Set global logger
		log.SetDefault(logger)
		ctx = log.WithContext(ctx, logger)
	}

	if f != nil {
		defer f.Close() // nolint: errcheck
	}

	// Set the max number of processes to the number of CPUs
	// This is useful when running soft-lfs in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	rootCmd := newRootCmd()
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if f != nil {
			f.Close() // nolint: errcheck
		}
		os.Exit(1)
	}
}
