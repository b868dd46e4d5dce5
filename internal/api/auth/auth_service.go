package auth

import (
	"context"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) error {
	return s.repo.Register(ctx, username, email, password)
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	return s.repo.Login(ctx, email, password)
}

func (s *ServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	return s.repo.RefreshSession(ctx, refreshToken)
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.Logout(ctx, refreshToken)
}

func (s *ServiceImpl) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
