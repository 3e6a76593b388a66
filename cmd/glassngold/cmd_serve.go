package main

import (
	"os"
	"os/signal"
	"syscall"

	"glassngold/internal/logging"
	"glassngold/internal/watch"
	"glassngold/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr     string
	serveBasePath string
	serveWatchDir string
	serveDev      bool
)

// serveCmd runs the web surface and, optionally, the drop-folder watcher.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio page and upload endpoint",
	Long: `Starts the web server. Uploads go through the same pipeline as the terminal UI.

With --watch DIR (or watch.enabled in the config), images dropped into DIR are
appraised too.

Example:
  glassngold serve --addr :8080 --base-path /glassngold/ --watch ./drop`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveBasePath, "base-path", "", "Mount prefix, e.g. /glassngold/")
	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "Drop folder to watch for images")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Development mode (no compression)")
}

// applyServeFlags copies explicitly set serve flags into cfg.
func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if flags.Changed("base-path") {
		cfg.Server.BasePath = serveBasePath
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled = serveWatchDir != ""
		cfg.Watch.Dir = serveWatchDir
	}
	if flags.Changed("dev") {
		cfg.Server.DevMode = serveDev
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeFlags(cmd)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	srv, err := web.New(cfg.Server, p)
	if err != nil {
		return err
	}

	log := logging.Get(logging.CategoryBoot)
	log.Info("serving portfolio", zap.String("addr", cfg.Server.Addr), zap.String("base", srv.BasePath()+"/"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	if cfg.Watch.Enabled {
		w := watch.New(cfg.Watch.Dir, p, cfg.Watch.GetDebounce())
		log.Info("watching drop folder", zap.String("dir", w.Dir()))
		g.Go(func() error { return w.Run(gctx) })
	}

	err = g.Wait()
	log.Info("serve stopped", zap.Error(err))
	return err
}
