package container

import (
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/repository"
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/service"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/bootstrap"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	MixRepo     *repository.MixRepository
	ProjectRepo *repository.ProjectRepository

	// Services
	MixService     *service.MixService
	ProjectService *service.ProjectService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) *Container {
	// Initialize repositories
	mixRepo := repository.NewMixRepository(components.Store, components.Logger)
	projectRepo := repository.NewProjectRepository(components.Store, components.Logger)

	// Initialize services (bottom-up: dependencies first)
	mixService := service.NewMixService(mixRepo, components.Config, components.Logger)
	projectService := service.NewProjectService(projectRepo, components.Logger)

	return &Container{
		Components:     components,
		MixRepo:        mixRepo,
		ProjectRepo:    projectRepo,
		MixService:     mixService,
		ProjectService: projectService,
	}
}
