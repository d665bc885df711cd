package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/WhoamiI00/neo-pins-sub000/config"
	"github.com/WhoamiI00/neo-pins-sub000/di"
	"github.com/WhoamiI00/neo-pins-sub000/job"
	"github.com/WhoamiI00/neo-pins-sub000/rest"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
)

func main() {
	log := logger.InitLogger()
	log.Info("Starting image delivery service")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	container, err := di.NewApplicationComponents(cfg)
	if err != nil {
		log.Error("Failed to build application components", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := job.NewJobScheduler()
	scheduler.Add(job.NewNetworkReassessJob(container.NetworkStateManager, cfg.Network.ReassessTick, cfg.Probe.Timeout))
	scheduler.Add(job.NewMetricsReportJob(container.MetricsCollector, time.Minute))
	scheduler.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout
	rest.RegisterRoutes(e, container, cfg)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Info("Server stopped", "reason", err)
	}

	scheduler.Shutdown()
}
