package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "tagcurator"
	// Version is the version of the compiled software.
	Version string

	flagconf  string
	flaglevel string
	flagwork  int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           Name,
		Short:         "Curate a danbooru tag vocabulary and training metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagconf, "conf", "c", "configs/config.yaml", "config path, eg: -conf config.yaml")
	root.PersistentFlags().StringVar(&flaglevel, "log-level", "", "log level override: debug, info, warn, error")
	root.PersistentFlags().IntVarP(&flagwork, "workers", "w", 0, "worker goroutines (0 = config or GOMAXPROCS)")

	root.AddCommand(newBuildCmd(), newFetchDeprecationsCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Normalize posts, merge duplicates and select the top tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := loadConfig(flagconf)
			if err != nil {
				return err
			}
			logger := newLogger(bc.Log.Level)
			helper := log.NewHelper(logger)

			var progress biz.ProgressFactory = biz.NopProgress
			if bc.Pipeline.Progress {
				progress = newProgressBar
			}

			uc, cleanup, err := wireCuration(bc, progress, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			c, err := uc.Run(cmd.Context())
			if err != nil {
				var stage *biz.StageError
				if errors.As(err, &stage) {
					helper.Errorf("stage %q failed: %v", stage.Stage, stage.Err)
				}
				return err
			}
			helper.Infof("curation finished in %s: %d records, %d tags, digest %s",
				time.Since(start).Round(time.Millisecond), c.Summary.RecordsOut, c.Summary.SelectedTags, c.Summary.Digest)
			return nil
		},
	}
}

func newFetchDeprecationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-deprecations",
		Short: "Download the deprecated tag list from danbooru",
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := loadConfig(flagconf)
			if err != nil {
				return err
			}
			logger := newLogger(bc.Log.Level)

			uc, cleanup, err := wireDeprecation(bc, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := uc.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d deprecated tags written to %s\n", n, bc.Input.Deprecations)
			return nil
		},
	}
}

// loadConfig reads the yaml config, applies flag overrides and defaults.
func loadConfig(path string) (*conf.Bootstrap, error) {
	c := config.New(
		config.WithSource(
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, err
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, err
	}

	if flaglevel != "" {
		if bc.Log == nil {
			bc.Log = &conf.Log{}
		}
		bc.Log.Level = flaglevel
	}
	if flagwork > 0 {
		if bc.Pipeline == nil {
			bc.Pipeline = &conf.Pipeline{}
		}
		bc.Pipeline.Workers = flagwork
	}
	bc.Normalize()
	if err := bc.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &bc, nil
}

func newLogger(level string) log.Logger {
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", Name,
		"service.version", Version,
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(level)))
}

func newProgressBar(total int, description string) biz.Progress {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
