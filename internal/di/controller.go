package di

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
	gqlctrl "github.com/jrjohn/outreach-api/internal/controller/graphql"
	httpctrl "github.com/jrjohn/outreach-api/internal/controller/http"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/service"
)

// ControllerModule provides HTTP and GraphQL controller dependencies
var ControllerModule = fx.Module("controller",
	fx.Provide(
		httpctrl.NewUserController,
		provideHealthController,
		provideGraphQLHandler,
	),
)

func provideHealthController(userDAO dao.UserDAO, logger *zap.Logger) *httpctrl.HealthController {
	return httpctrl.NewHealthController(userDAO, logger)
}

// provideGraphQLHandler returns nil when GraphQL is disabled
func provideGraphQLHandler(
	userService service.UserService,
	app *config.AppConfig,
	cfg *config.GraphQLConfig,
	logger *zap.Logger,
) (*gqlctrl.Handler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	schema, err := gqlctrl.BuildSchema(gqlctrl.NewResolver(userService, app.Version))
	if err != nil {
		return nil, err
	}
	return gqlctrl.NewHandler(schema, cfg, logger), nil
}
