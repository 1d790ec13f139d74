package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hearthledger/budget-server/internal/handlers/v1/account"
	"github.com/hearthledger/budget-server/internal/handlers/v1/category"
	"github.com/hearthledger/budget-server/internal/handlers/v1/schedulerule"
	"github.com/hearthledger/budget-server/internal/handlers/v1/status"
	"github.com/hearthledger/budget-server/internal/handlers/v1/transaction"
	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/service"
)

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service

	server *http.Server
}

func (r *Rest) Serve() {
	router := chi.NewRouter()

	statusHandler := status.NewHandler()
	router.Get("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	humaAPI := humachi.New(router, huma.DefaultConfig("budget-server", "1.0.0"))
	humaAPI.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
		logData := logging.NewLogData(r.Logger)
		next(huma.WithContext(ctx, logging.ContextWithLogData(ctx.Context(), logData)))
		logData.Log().WithFields(logrus.Fields{
			"path":   ctx.URL().Path,
			"status": ctx.Status(),
		}).Info("Handler.Complete")
	})

	account.NewCreateAccountHandler(r.Service.Account).Register(humaAPI)
	account.NewListAccountsHandler(r.Service.Account).Register(humaAPI)
	category.NewCreateCategoryHandler(r.Service.Category).Register(humaAPI)
	category.NewListCategoriesHandler(r.Service.Category).Register(humaAPI)
	transaction.NewCreateTransactionHandler(r.Service.Transaction).Register(humaAPI)
	transaction.NewListTransactionsHandler(r.Service.Transaction).Register(humaAPI)
	schedulerule.NewCreateRuleHandler(r.Service.Rule).Register(humaAPI)
	schedulerule.NewListRulesHandler(r.Service.Rule).Register(humaAPI)
	schedulerule.NewGetRuleHandler(r.Service.Rule).Register(humaAPI)
	schedulerule.NewDeleteRuleHandler(r.Service.Rule).Register(humaAPI)
	schedulerule.NewLifecycleHandler(r.Service.Rule).Register(humaAPI)

	r.server = &http.Server{
		Addr:              ":" + r.Port,
		Handler:           router,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := r.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}

// Shutdown drains in-flight requests and stops the listener.
func (r *Rest) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
