package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdaurl"
	"github.com/dmorgan81/tryonbot/internal/inject"
	"github.com/dmorgan81/tryonbot/internal/log"
	"github.com/dmorgan81/tryonbot/internal/server"
	"github.com/samber/do"
)

func main() {
	logger := log.New(os.Stderr, log.ParseLevel(os.Getenv("LOG_LEVEL")))
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx)
	srv := do.MustInvoke[*server.Server](injector)

	if inject.InLambda() {
		lambda.StartWithOptions(lambdaurl.Wrap(srv.Router()), lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := srv.ListenAndServe(ctx, do.MustInvokeNamed[string](injector, "addr"))
	_ = injector.Shutdown()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
