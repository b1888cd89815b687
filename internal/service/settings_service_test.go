package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_AdminSettingsAreMasked(t *testing.T) {
	repo := &fakeAdminSettingRepo{}
	svc := NewSettingsService(repo, &fakePaymentSettingsRepo{})
	ctx := context.Background()

	saved, err := svc.SaveAdminSetting(ctx, "google_client_secret", "s3cr3t", true)
	require.NoError(t, err)
	assert.Equal(t, domain.MaskedValue, saved.Value)

	_, err = svc.SaveAdminSetting(ctx, "google_client_id", "client-id", false)
	require.NoError(t, err)

	all, err := svc.ListAdminSettings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "client-id", all[0].Value)
	assert.Equal(t, domain.MaskedValue, all[1].Value)

	// stored value is untouched
	stored, err := repo.GetByKey(ctx, "google_client_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", stored.Value)

	_, err = svc.SaveAdminSetting(ctx, "  ", "x", false)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsService_PaymentSettingsDefaultToFreeMode(t *testing.T) {
	svc := NewSettingsService(&fakeAdminSettingRepo{}, &fakePaymentSettingsRepo{})

	settings, err := svc.PaymentSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.IsPaidVersion)

	paid, err := svc.IsPaidMode(context.Background())
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestSettingsService_UpdatePaymentSettings(t *testing.T) {
	repo := &fakePaymentSettingsRepo{}
	svc := NewSettingsService(&fakeAdminSettingRepo{}, repo)
	ctx := context.Background()

	paid := true
	key := "integration-key"
	merchant := "m-1"
	created, err := svc.UpdatePaymentSettings(ctx, domain.PaymentSettingsUpdate{
		IsPaidVersion:  &paid,
		IntegrationKey: &key,
		MerchantID:     &merchant,
	})
	require.NoError(t, err)
	assert.Equal(t, "ps-1", created.ID)
	assert.True(t, created.IsPaidVersion)

	// echoing the masked key back keeps the stored one
	masked := domain.MaskedValue
	merchant = "m-2"
	updated, err := svc.UpdatePaymentSettings(ctx, domain.PaymentSettingsUpdate{
		IntegrationKey: &masked,
		MerchantID:     &merchant,
	})
	require.NoError(t, err)
	assert.Equal(t, "integration-key", updated.IntegrationKey)
	assert.Equal(t, "m-2", updated.MerchantID)
	assert.Equal(t, domain.MaskedValue, updated.Masked().IntegrationKey)

	isPaid, err := svc.IsPaidMode(ctx)
	require.NoError(t, err)
	assert.True(t, isPaid)
}
