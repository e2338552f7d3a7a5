// Package seed resets the user collection and loads fixture users.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
)

// Fixtures is the layout of a fixtures file:
//
//	users:
//	  - name: Ann Lee
//	    age: 30
//	    email: ann@x.io
//	    score: 0.8
type Fixtures struct {
	Users []map[string]any `yaml:"users"`
}

// Decode reads fixtures from r and validates every user. Violations are
// reported with the index of the offending entry.
func Decode(r io.Reader) ([]*entity.User, error) {
	var fixtures Fixtures
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}

	users := make([]*entity.User, 0, len(fixtures.Users))
	for i, raw := range fixtures.Users {
		user, err := validation.UserFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// LoadFile reads fixtures from path
func LoadFile(path string) ([]*entity.User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WithCache routes writes through the read cache so that a running server
// sharing client drops reads cached before the seed. A nil client returns
// userDAO unchanged.
func WithCache(userDAO dao.UserDAO, client cache.Client, ttl time.Duration, logger *zap.Logger) dao.UserDAO {
	if client == nil {
		return userDAO
	}
	return cache.NewCachedUserDAO(userDAO, client, nil, ttl, logger)
}

// Run resets the collection, recreating its text index, and writes users.
// With no users the default sample user is written.
func Run(ctx context.Context, userDAO dao.UserDAO, users []*entity.User, logger *zap.Logger) error {
	if err := userDAO.ResetCollection(ctx); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}
	logger.Info("Collection reset")

	if len(users) == 0 {
		defaultUser := entity.DefaultUser
		users = []*entity.User{&defaultUser}
	}

	if err := userDAO.WriteMany(ctx, translator.FromUsers(users)); err != nil {
		return fmt.Errorf("failed to write fixtures: %w", err)
	}
	logger.Info("Fixtures written", zap.Int("users", len(users)))
	return nil
}
