package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mansoorceksport/eventhub/internal/domain"
)

// SettingsService manages admin key/value settings and payment settings
type SettingsService struct {
	adminRepo   domain.AdminSettingRepository
	paymentRepo domain.PaymentSettingsRepository
}

func NewSettingsService(adminRepo domain.AdminSettingRepository, paymentRepo domain.PaymentSettingsRepository) *SettingsService {
	return &SettingsService{
		adminRepo:   adminRepo,
		paymentRepo: paymentRepo,
	}
}

// ListAdminSettings returns every setting with encrypted values masked
func (s *SettingsService) ListAdminSettings(ctx context.Context) ([]domain.AdminSetting, error) {
	settings, err := s.adminRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	masked := make([]domain.AdminSetting, 0, len(settings))
	for _, setting := range settings {
		masked = append(masked, setting.Masked())
	}
	return masked, nil
}

// SaveAdminSetting upserts by key and returns the masked result
func (s *SettingsService) SaveAdminSetting(ctx context.Context, key, value string, isEncrypted bool) (domain.AdminSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.AdminSetting{}, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}
	if len(key) > 100 {
		return domain.AdminSetting{}, fmt.Errorf("%w: key must be at most 100 characters", domain.ErrInvalidInput)
	}

	setting := &domain.AdminSetting{Key: key, Value: value, IsEncrypted: isEncrypted}
	if err := s.adminRepo.Upsert(ctx, setting); err != nil {
		return domain.AdminSetting{}, err
	}
	return setting.Masked(), nil
}

// PaymentSettings returns the active settings, or free mode when none exist.
// Callers get the unmasked record; use Masked before sending it to clients.
func (s *SettingsService) PaymentSettings(ctx context.Context) (*domain.PaymentSettings, error) {
	settings, err := s.paymentRepo.GetActive(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultPaymentSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// IsPaidMode reports whether new event listings are charged
func (s *SettingsService) IsPaidMode(ctx context.Context) (bool, error) {
	settings, err := s.PaymentSettings(ctx)
	if err != nil {
		return false, err
	}
	return settings.IsPaidVersion, nil
}

// UpdatePaymentSettings applies update to the active record, creating it if needed
func (s *SettingsService) UpdatePaymentSettings(ctx context.Context, update domain.PaymentSettingsUpdate) (*domain.PaymentSettings, error) {
	settings, err := s.paymentRepo.GetActive(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		settings = domain.DefaultPaymentSettings()
		update.Apply(settings)
		if err := s.paymentRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
		return settings, nil
	case err != nil:
		return nil, err
	}

	update.Apply(settings)
	if err := s.paymentRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
