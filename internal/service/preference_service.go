package service

import (
	"context"
	"fmt"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PreferenceStore persists encoded preference blobs per user.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (domain.UserConfig, bool, error)
	Save(ctx context.Context, userID string, config []byte) error
}

type PreferenceService struct {
	tracer trace.Tracer
	logger *zap.Logger
	store  PreferenceStore
}

func NewPreferenceService(tracer trace.Tracer, logger *zap.Logger, store PreferenceStore) *PreferenceService {
	return &PreferenceService{
		tracer: tracer,
		logger: logger.With(zap.String("component", "preference-service")),
		store:  store,
	}
}

// Load returns the user's canonical preferences. Unknown users, an empty
// user id and unreadable blobs all resolve to the defaults.
func (s *PreferenceService) Load(ctx context.Context, userID string) (preferences.Preferences, error) {
	ctx, span := s.tracer.Start(ctx, "preference-service.load")
	defer span.End()

	if userID == "" || s.store == nil {
		return preferences.Default(), nil
	}
	row, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return preferences.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		return preferences.Default(), nil
	}
	prefs, err := preferences.DecodeOrDefault(row.Config)
	if err != nil {
		s.logger.Warn("stored preferences unreadable, using defaults", zap.String("user_id", userID), zap.Error(err))
	}
	return prefs, nil
}

// Save validates prefs and stores them in the current blob layout.
func (s *PreferenceService) Save(ctx context.Context, userID string, prefs preferences.Preferences) error {
	ctx, span := s.tracer.Start(ctx, "preference-service.save")
	defer span.End()

	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidPreferences)
	}
	if err := prefs.Validate(); err != nil {
		return err
	}
	blob, err := preferences.Encode(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.store.Save(ctx, userID, blob); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
