package main

import (
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"github.com/evalhub/evalhub/internal/config"
	"github.com/evalhub/evalhub/internal/container"
	"github.com/evalhub/evalhub/internal/router"
)

func main() {
	c := container.New()

	r := router.New(router.RouterConfig{
		EvaluationHandler: c.EvaluationContainer.Handler,
		AttemptHandler:    c.AttemptContainer.Handler,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := chiadapter.New(r.(*chi.Mux))
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	port := config.Env("PORT", "8080")
	config.Logger().WithField("port", port).Info("Starting HTTP server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		config.Logger().WithError(err).Fatal("HTTP server stopped")
	}
}
