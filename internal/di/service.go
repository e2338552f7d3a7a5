package di

import (
	"go.uber.org/fx"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/service"
)

// ServiceModule provides service layer dependencies
var ServiceModule = fx.Module("service",
	fx.Provide(provideUserService),
)

func provideUserService(userDAO dao.UserDAO) service.UserService {
	return service.NewUserService(userDAO)
}
