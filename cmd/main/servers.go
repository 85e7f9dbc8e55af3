package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"sync"
	"syscall"

	pb "biometric-insights/src/grpc_control"
	"biometric-insights/src/logger"
	"biometric-insights/src/pipeline"
	"biometric-insights/src/server"
	"biometric-insights/src/utils"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest report over HTTP/WebSocket and gRPC",
	Long: `Generates a first report, then serves it on the HTTP API and the gRPC control
service. Reports are regenerated on demand and, when refresh.interval_minutes is set,
on a timer. Ctrl+C stops everything.`,
	RunE: runServe,
}

// -----------------------------------------------------------------------------

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}
	appLogger := logger.NewLogger(cfg, cfg.Name)
	defer appLogger.Sync()

	p, profileDir, cleanup, err := setupPipeline(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Report server and runner
	runner := pipeline.NewProfileRunner(p, profileDir)
	srv := server.NewReportServer(cfg.MConfig, runner, logger.NewLogger(cfg, "ReportServer"))

	// 2. gRPC control service
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	grpcServer := grpc.NewServer()
	controlService := pb.NewControlService(runner, srv, p.Store, logger.NewLogger(cfg, "ControlService"))
	pb.RegisterReportControlServer(grpcServer, controlService)

	// 3. Start everything
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("failed to serve gRPC: %v", err)
			stop()
		}
	}()

	// 4. First report; insufficient data is not fatal while serving
	if r, err := srv.Refresh(ctx); err != nil {
		appLogger.Warning("Initial report failed: %v", err)
	} else {
		appLogger.Info("Initial report %s ready", r.ID)
	}

	// 5. Periodic refresh
	scheduler := utils.NewRefreshScheduler(cfg.Refresh.IntervalMinutes, func(ctx context.Context) error {
		_, err := srv.Refresh(ctx)
		return err
	}, logger.NewLogger(cfg, "RefreshScheduler"))
	go scheduler.Run(ctx)

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	grpcServer.GracefulStop()
	if err := srv.Stop(); err != nil {
		appLogger.Warning("HTTP shutdown: %v", err)
	}
	wg.Wait()
	return nil
}
