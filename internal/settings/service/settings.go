package service

import (
	"context"
	"errors"
	"time"

	"parkfinder/internal/settings/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
)

type SettingsService interface {
	HourlyRate(ctx context.Context) (float64, error)
	GetBilling(ctx context.Context) (*model.BillingSettings, error)
	SetHourlyRate(ctx context.Context, session *model.Session, rate float64) (*model.BillingSettings, error)
}

type settingsService struct {
	repo repository.SettingsRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewSettingsService(repo repository.SettingsRepository, cfg *config.Config) SettingsService {
	return &settingsService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// HourlyRate returns the configured default until an admin overrides it.
func (s *settingsService) HourlyRate(ctx context.Context) (float64, error) {
	settings, err := s.repo.GetBilling(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.cfg.DefaultHourlyRate, nil
		}
		return 0, err
	}
	return settings.HourlyRate, nil
}

func (s *settingsService) GetBilling(ctx context.Context) (*model.BillingSettings, error) {
	settings, err := s.repo.GetBilling(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.BillingSettings{HourlyRate: s.cfg.DefaultHourlyRate}, nil
		}
		return nil, apperrors.Internal("Failed to load billing settings", err)
	}
	return settings, nil
}

func (s *settingsService) SetHourlyRate(ctx context.Context, session *model.Session, rate float64) (*model.BillingSettings, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if rate <= 0 {
		return nil, apperrors.InvalidInput("Hourly rate must be positive")
	}

	settings := &model.BillingSettings{
		HourlyRate: rate,
		UpdatedAt:  s.now(),
		UpdatedBy:  session.UserID,
	}
	if err := s.repo.PutBilling(ctx, settings); err != nil {
		s.cfg.Log.Error("Failed to save billing settings", "error", err)
		return nil, apperrors.Internal("Failed to save billing settings", err)
	}

	s.cfg.Log.Info("Hourly rate updated", "rate", rate, "by", session.UserID)
	return settings, nil
}
