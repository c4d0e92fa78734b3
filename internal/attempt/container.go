package attempt

import (
	"github.com/evalhub/evalhub/internal/evaluation"
	"gorm.io/gorm"
)

type Container struct {
	Handler *Handler
	Service Service
}

func NewContainer(db *gorm.DB, evals evaluation.Service) *Container {
	repo := NewRepository(db)
	checker := NewAdmissionChecker(evals, repo)
	service := NewService(repo, evals, checker)
	handler := NewHandler(service)

	return &Container{
		Handler: handler,
		Service: service,
	}
}
