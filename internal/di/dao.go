package di

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	mongodao "github.com/jrjohn/outreach-api/internal/domain/dao/mongo"
	"github.com/jrjohn/outreach-api/internal/observability"
)

// DAOModule provides the user DAO: the MongoDB implementation wrapped with
// instrumentation and, when Redis is available, a read cache.
var DAOModule = fx.Module("dao",
	fx.Provide(provideUserDAO),
)

func provideUserDAO(
	mongoDB *MongoDatabase,
	dbCfg *config.DatabaseConfig,
	redisCfg *config.RedisConfig,
	client cache.Client,
	metrics *observability.MetricsProvider,
	tracing *observability.TracingProvider,
	logger *zap.Logger,
) dao.UserDAO {
	userDAO := mongodao.NewUserDAO(mongoDB.DB, dbCfg.Collection)
	userDAO = dao.NewInstrumentedUserDAO(userDAO, metrics, tracing.Tracer(), "mongodb")

	if client != nil {
		userDAO = cache.NewCachedUserDAO(userDAO, client, metrics, redisCfg.CacheTTL, logger)
	}
	return userDAO
}
