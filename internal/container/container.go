package container

import (
	"context"
	"log"
	"os"

	"github.com/evalhub/evalhub/internal/attempt"
	"github.com/evalhub/evalhub/internal/auth"
	"github.com/evalhub/evalhub/internal/config"
	"github.com/evalhub/evalhub/internal/evaluation"
)

type Container struct {
	EvaluationContainer *evaluation.Container
	AttemptContainer    *attempt.Container
}

func New() *Container {
	config.Init()
	auth.Init()

	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(context.Background(), dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	evaluationContainer := evaluation.NewContainer(config.DB)
	attemptContainer := attempt.NewContainer(config.DB, evaluationContainer.Service)

	return &Container{
		EvaluationContainer: evaluationContainer,
		AttemptContainer:    attemptContainer,
	}
}
