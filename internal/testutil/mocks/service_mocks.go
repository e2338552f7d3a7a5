package mocks

import (
	"context"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
)

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	CreateFunc func(ctx context.Context, payload map[string]any) (bool, error)
	ReadFunc   func(ctx context.Context, query map[string]any) ([]entity.User, error)
	SearchFunc func(ctx context.Context, text string) ([]entity.User, error)
	CountFunc  func(ctx context.Context, query map[string]any) (int64, error)
	UpdateFunc func(ctx context.Context, request map[string]any) (bool, error)
	DeleteFunc func(ctx context.Context, query map[string]any) (bool, error)
}

func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) Create(ctx context.Context, payload map[string]any) (bool, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payload)
	}
	return true, nil
}

func (m *MockUserService) Read(ctx context.Context, query map[string]any) ([]entity.User, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, query)
	}
	return []entity.User{}, nil
}

func (m *MockUserService) Search(ctx context.Context, text string) ([]entity.User, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, text)
	}
	return []entity.User{}, nil
}

func (m *MockUserService) Count(ctx context.Context, query map[string]any) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, query)
	}
	return 0, nil
}

func (m *MockUserService) Update(ctx context.Context, request map[string]any) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, request)
	}
	return true, nil
}

func (m *MockUserService) Delete(ctx context.Context, query map[string]any) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, query)
	}
	return true, nil
}
