// cmd/faultmanager/serve.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/fault-manager/internal/config"
	"github.com/tamzrod/fault-manager/internal/device"
	"github.com/tamzrod/fault-manager/internal/dispatch"
	"github.com/tamzrod/fault-manager/internal/faultlog"
	"github.com/tamzrod/fault-manager/internal/logging"
	"github.com/tamzrod/fault-manager/internal/metrics"
	"github.com/tamzrod/fault-manager/internal/natsbus"
	"github.com/tamzrod/fault-manager/internal/poller"
	"github.com/tamzrod/fault-manager/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fault manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			cfg := &config.Config{}
			if path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			} else {
				config.Normalize(cfg)
			}

			if ep, _ := cmd.Flags().GetString("endpoint"); ep != "" {
				cfg.Manager.Endpoint = ep
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, os.Stderr)
		},
	}
	cmd.Flags().StringP("config", "c", "", "YAML config file (defaults apply when omitted)")
	return cmd
}

// serve wires every component from cfg and blocks until ctx is cancelled
// or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, logOut)
	if err != nil {
		return err
	}

	loc, err := config.ResolveLocation(cfg.Manager.Timezone)
	if err != nil {
		return err
	}

	flog, err := faultlog.New(faultlog.Config{
		Path:     cfg.Manager.LogPath,
		Mode:     faultlog.Mode(cfg.Manager.LogMode),
		Location: loc,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := flog.Close(); err != nil {
			logger.Warn("fault log close failed", slog.Any("err", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	faultCode := int32(config.DefaultFaultCode)
	if cfg.Manager.FaultCode != nil {
		faultCode = int32(*cfg.Manager.FaultCode)
	}

	dev, err := device.New(device.Options{
		Log:       flog,
		FaultCode: faultCode,
		MaxWrite:  cfg.Manager.MaxWrite,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	loop := dispatch.New(cfg.Manager.QueueDepth, logger)
	srv := server.New(dev, loop, server.Config{MaxMessage: cfg.Manager.MaxMessage}, logger)

	ln, err := server.Listen(cfg.Manager.Endpoint)
	if err != nil {
		return err
	}
	defer os.Remove(cfg.Manager.Endpoint)

	var pollers []*poller.Poller
	for _, mb := range cfg.Sources.Modbus {
		p, err := poller.Build(mb)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("modbus source %s: %w", mb.ID, err)
		}
		pollers = append(pollers, p)
	}

	var sub *natsbus.Subscriber
	if n := cfg.Sources.NATS; n != nil {
		sub, err = natsbus.New(natsbus.Config{URL: n.URL, Subject: n.Subject}, srv, logger)
		if err != nil {
			_ = ln.Close()
			return err
		}
	}

	var metricsLn net.Listener
	if cfg.Metrics.Listen != "" {
		if metricsLn, err = net.Listen("tcp", cfg.Metrics.Listen); err != nil {
			_ = ln.Close()
			return fmt.Errorf("metrics listen %s: %w", cfg.Metrics.Listen, err)
		}
	}

	logger.Info("fault manager starting",
		slog.String("endpoint", cfg.Manager.Endpoint),
		slog.String("log_path", cfg.Manager.LogPath),
		slog.String("log_mode", cfg.Manager.LogMode),
		slog.Int("fault_code", int(faultCode)),
		slog.Int("modbus_sources", len(pollers)),
		slog.Bool("nats", sub != nil),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx, ln) })

	for _, p := range pollers {
		p := p
		g.Go(func() error { return p.Run(gctx, srv, logger) })
	}
	if sub != nil {
		g.Go(func() error { return sub.Run(gctx) })
	}
	if metricsLn != nil {
		h := metrics.NewRouter(reg, dev.Status().Text())
		g.Go(func() error { return metrics.Serve(gctx, metricsLn, h, logger) })
	}

	err = g.Wait()
	logger.Info("fault manager stopped", slog.Any("err", err))
	return err
}
