package domain

import (
	"context"
	"time"
)

// MaskedValue replaces secrets in API responses.
const MaskedValue = "[ENCRYPTED]"

// AdminSetting is an admin-managed key/value pair (OAuth client IDs, secrets, ...)
type AdminSetting struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	IsEncrypted bool      `json:"is_encrypted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Masked returns a copy safe to send to clients.
func (s AdminSetting) Masked() AdminSetting {
	if s.IsEncrypted {
		s.Value = MaskedValue
	}
	return s
}

// AdminSettingRepository defines operations for admin settings
type AdminSettingRepository interface {
	GetByKey(ctx context.Context, key string) (*AdminSetting, error)
	// Upsert creates the setting or replaces the value of an existing key.
	Upsert(ctx context.Context, setting *AdminSetting) error
	GetAll(ctx context.Context) ([]*AdminSetting, error)
}

// PaymentSettings controls whether listings are charged and holds gateway credentials.
type PaymentSettings struct {
	ID             string    `json:"id,omitempty"`
	IsPaidVersion  bool      `json:"is_paid_version"`
	MerchantID     string    `json:"merchant_id"`
	IntegrationID  string    `json:"integration_id"`
	IntegrationKey string    `json:"integration_key"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// DefaultPaymentSettings is the free mode used when nothing is configured.
func DefaultPaymentSettings() *PaymentSettings {
	return &PaymentSettings{IsPaidVersion: false, IsActive: true}
}

// Masked returns a copy with the integration key hidden.
func (s PaymentSettings) Masked() PaymentSettings {
	if s.IntegrationKey != "" {
		s.IntegrationKey = MaskedValue
	}
	return s
}

// PaymentSettingsUpdate carries the fields an admin may change. Nil means unchanged.
type PaymentSettingsUpdate struct {
	IsPaidVersion  *bool
	MerchantID     *string
	IntegrationID  *string
	IntegrationKey *string
}

// Apply copies the set fields onto s.
func (u PaymentSettingsUpdate) Apply(s *PaymentSettings) {
	if u.IsPaidVersion != nil {
		s.IsPaidVersion = *u.IsPaidVersion
	}
	if u.MerchantID != nil {
		s.MerchantID = *u.MerchantID
	}
	if u.IntegrationID != nil {
		s.IntegrationID = *u.IntegrationID
	}
	// Clients echo the masked value back; keep the stored key in that case.
	if u.IntegrationKey != nil && *u.IntegrationKey != MaskedValue {
		s.IntegrationKey = *u.IntegrationKey
	}
}

// PaymentSettingsRepository defines operations for payment settings
type PaymentSettingsRepository interface {
	// GetActive returns the newest active settings or ErrNotFound.
	GetActive(ctx context.Context) (*PaymentSettings, error)
	Create(ctx context.Context, settings *PaymentSettings) error
	Update(ctx context.Context, settings *PaymentSettings) error
}
