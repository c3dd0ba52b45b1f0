package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillnest/internal/health"
	"skillnest/internal/wire"
)

func main() {
	app, cleanup, err := wire.InitializeNotifsApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()
	logger := app.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Health.Run(ctx)

	grpcServer := health.NewGRPCServer(app.Health)
	lis, err := net.Listen("tcp", ":"+app.Config.Server.HealthGRPCPort)
	if err != nil {
		logger.Error("failed to listen for grpc health", "port", app.Config.Server.HealthGRPCPort, "error", err)
		return
	}
	go func() {
		logger.Info("grpc health listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc health server stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         app.Config.Addr(),
		Handler:      app.Routes(),
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}
	go func() {
		logger.Info("notification service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down notification service")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("notification service stopped")
}
