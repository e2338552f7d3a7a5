package service

import (
	"context"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/dao/mapper"
	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
)

// UserService defines the CRUD operations over the user collection. Every
// payload is validated before the store is touched.
type UserService interface {
	// Create validates a full user and stores it
	Create(ctx context.Context, payload map[string]any) (bool, error)

	// Read returns every user matching the query
	Read(ctx context.Context, query map[string]any) ([]entity.User, error)

	// Search runs a full-text search across all user fields
	Search(ctx context.Context, text string) ([]entity.User, error)

	// Count returns the number of users matching the query
	Count(ctx context.Context, query map[string]any) (int64, error)

	// Update sets the fields of the envelope's "update" on the first user
	// matching its "query"
	Update(ctx context.Context, request map[string]any) (bool, error)

	// Delete removes every user matching the query
	Delete(ctx context.Context, query map[string]any) (bool, error)
}

// userService implements UserService
type userService struct {
	userDAO dao.UserDAO
	mapper  *mapper.UserMapper
}

// NewUserService creates a new UserService instance
func NewUserService(userDAO dao.UserDAO) UserService {
	return &userService{
		userDAO: userDAO,
		mapper:  mapper.NewUserMapper(),
	}
}

func (s *userService) Create(ctx context.Context, payload map[string]any) (bool, error) {
	user, err := validation.UserFromMap(payload)
	if err != nil {
		return false, err
	}
	if err := s.userDAO.WriteOne(ctx, s.mapper.ToDocument(user)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) Read(ctx context.Context, query map[string]any) ([]entity.User, error) {
	q, err := validation.UserQueryFromMap(query)
	if err != nil {
		return nil, err
	}
	docs, err := s.userDAO.Find(ctx, translator.ToFilter(q), dao.DefaultProjection)
	if err != nil {
		return nil, err
	}
	return s.toUsers(docs)
}

func (s *userService) Search(ctx context.Context, text string) ([]entity.User, error) {
	if err := validation.ValidateSearchText(text); err != nil {
		return nil, err
	}
	docs, err := s.userDAO.Search(ctx, text, dao.DefaultProjection)
	if err != nil {
		return nil, err
	}
	return s.toUsers(docs)
}

func (s *userService) Count(ctx context.Context, query map[string]any) (int64, error) {
	q, err := validation.UserQueryFromMap(query)
	if err != nil {
		return 0, err
	}
	return s.userDAO.Count(ctx, translator.ToFilter(q))
}

func (s *userService) Update(ctx context.Context, request map[string]any) (bool, error) {
	q, u, err := validation.UpdateRequestFromMap(request)
	if err != nil {
		return false, err
	}
	if _, err := s.userDAO.UpdateOne(ctx, translator.ToFilter(q), translator.ToPatch(u)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) Delete(ctx context.Context, query map[string]any) (bool, error) {
	q, err := validation.UserQueryFromMap(query)
	if err != nil {
		return false, err
	}
	if _, err := s.userDAO.DeleteMany(ctx, translator.ToFilter(q)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) toUsers(docs []translator.Document) ([]entity.User, error) {
	users, err := s.mapper.ToEntities(docs)
	if err != nil {
		return nil, err
	}
	out := make([]entity.User, len(users))
	for i, user := range users {
		out[i] = *user
	}
	return out, nil
}
