package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthledger/budget-server/api"
	"github.com/hearthledger/budget-server/internal/config"
	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/operator"
	"github.com/hearthledger/budget-server/internal/scheduler"
	"github.com/hearthledger/budget-server/internal/service"
	"github.com/hearthledger/budget-server/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := logging.SetupLogging()
	logger.Info("budget-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	dbStorage, err := storage.NewStorage(envConfig)
	if err != nil {
		logger.WithError(err).Fatal("storage.NewStorage")
		return
	}
	defer dbStorage.Close()

	op := operator.NewOperatorDelegator(dbStorage, 4)
	op.Start()
	defer op.Stop()

	led := ledger.NewOperatorLedger(op)

	svc, err := service.NewService(dbStorage, op, led)
	if err != nil {
		logger.WithError(err).Fatal("service.NewService")
		return
	}

	runner := scheduler.NewRunner(dbStorage.Rules, led, envConfig.Scheduler, logger)
	loop := scheduler.NewLoop(dbStorage.Rules, runner, envConfig.Scheduler, logger)
	if err := loop.Start(); err != nil {
		logger.WithError(err).Fatal("scheduler.Loop.Start")
		return
	}
	defer loop.Stop()

	httpRest := api.Rest{
		Logger:  logger,
		Port:    envConfig.Port,
		Service: svc,
	}
	go httpRest.Serve()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.WithField("signal", sig.String()).Info("budget-server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpRest.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HttpServer.Shutdown")
	}
}
