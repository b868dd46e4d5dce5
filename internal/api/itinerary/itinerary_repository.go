package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// ErrItineraryNotFound is returned when the requested itinerary does not
// exist or belongs to another user.
var ErrItineraryNotFound = errors.New("itinerary not found")

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists itineraries users chose to keep.
type Repository interface {
	SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error)
	GetUserItineraries(ctx context.Context, userID uuid.UUID) ([]*types.SavedItinerary, error)
	DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool api.PGXPool
}

func NewRepository(pgpool api.PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error) {
	// Day plans and place groups are stored as jsonb; their shape only
	// matters to the application.
	itineraryJSON, err := json.Marshal(req.Itinerary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}
	placesJSON, err := json.Marshal(req.Places)
	if err != nil {
		return nil, fmt.Errorf("failed to encode places: %w", err)
	}

	query := `
        INSERT INTO itineraries (user_id, title, days, transportation_mode, itinerary, places)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	saved := types.SavedItinerary{
		UserID:        userID,
		Title:         req.Title,
		Days:          req.Days,
		TransportMode: req.TransportMode,
		Itinerary:     req.Itinerary,
		Places:        req.Places,
	}
	err = r.pgpool.QueryRow(ctx, query,
		userID, req.Title, req.Days, req.TransportMode, itineraryJSON, placesJSON,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	return &saved, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	query := `
        SELECT id, user_id, title, days, transportation_mode, itinerary, places, created_at
        FROM itineraries
        WHERE id = $1 AND user_id = $2
    `
	row := r.pgpool.QueryRow(ctx, query, itineraryID, userID)
	saved, err := scanItinerary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItineraryNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return saved, nil
}

func (r *RepositoryImpl) GetUserItineraries(ctx context.Context, userID uuid.UUID) ([]*types.SavedItinerary, error) {
	query := `
        SELECT id, user_id, title, days, transportation_mode, itinerary, places, created_at
        FROM itineraries
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var itineraries []*types.SavedItinerary
	for rows.Next() {
		saved, err := scanItinerary(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan itinerary row", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		itineraries = append(itineraries, saved)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary rows: %w", err)
	}
	return itineraries, nil
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, userID, itineraryID uuid.UUID) error {
	query := `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`
	tag, err := r.pgpool.Exec(ctx, query, itineraryID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItineraryNotFound
	}
	return nil
}

func scanItinerary(row pgx.Row) (*types.SavedItinerary, error) {
	var saved types.SavedItinerary
	var itineraryJSON, placesJSON []byte
	err := row.Scan(
		&saved.ID, &saved.UserID, &saved.Title, &saved.Days, &saved.TransportMode,
		&itineraryJSON, &placesJSON, &saved.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itineraryJSON, &saved.Itinerary); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary column: %w", err)
	}
	if err := json.Unmarshal(placesJSON, &saved.Places); err != nil {
		return nil, fmt.Errorf("failed to decode places column: %w", err)
	}
	return &saved, nil
}
