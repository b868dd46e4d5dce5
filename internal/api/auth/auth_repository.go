package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool api.PGXPool
	tokens *TokenIssuer
}

func NewRepository(pgpool api.PGXPool, tokens *TokenIssuer, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		tokens: tokens,
	}
}

func (r *RepositoryImpl) Register(ctx context.Context, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)",
		username, email, string(hash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		r.logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, username, email, password_hash FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrUnauthenticated
		}
		r.logger.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		return "", "", fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", "", ErrUnauthenticated
	}

	return r.issueTokens(ctx, &user)
}

func (r *RepositoryImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	var userID string
	var expiresAt time.Time
	var invalidatedAt *time.Time
	err := r.pgpool.QueryRow(ctx,
		"SELECT user_id, expires_at, invalidated_at FROM refresh_tokens WHERE token = $1",
		refreshToken).Scan(&userID, &expiresAt, &invalidatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrUnauthenticated
		}
		return "", "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if time.Now().After(expiresAt) || invalidatedAt != nil {
		return "", "", ErrUnauthenticated
	}

	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	// Rotate: the old token stops working the moment a new pair is issued.
	if err := r.Logout(ctx, refreshToken); err != nil {
		return "", "", err
	}
	return r.issueTokens(ctx, user)
}

func (r *RepositoryImpl) Logout(ctx context.Context, refreshToken string) error {
	_, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET invalidated_at = NOW() WHERE token = $1 AND invalidated_at IS NULL",
		refreshToken)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to invalidate refresh token", slog.Any("error", err))
		return fmt.Errorf("failed to invalidate refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, username, email, created_at FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *RepositoryImpl) issueTokens(ctx context.Context, user *types.User) (string, string, error) {
	accessToken, err := r.tokens.IssueAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(r.tokens.RefreshTTL())
	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		user.ID, refreshToken, expiresAt)
	if err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}
