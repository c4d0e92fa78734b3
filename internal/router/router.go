package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/evalhub/evalhub/internal/attempt"
	"github.com/evalhub/evalhub/internal/auth"
	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/evalhub/evalhub/internal/middlewares"
)

type RouterConfig struct {
	EvaluationHandler *evaluation.Handler
	AttemptHandler    *attempt.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/evaluations", evaluation.Routes(cfg.EvaluationHandler))
		r.Mount("/attempts", attempt.Routes(cfg.AttemptHandler))

		r.Post("/evaluations/{id}/attempts", cfg.AttemptHandler.StartOrResume)
	})

	return r
}
