package ipaymu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyNotification(t *testing.T) {
	sig := SignNotification("key", "1179000899", "sess-1", NotificationStatusPaid)

	assert.True(t, VerifyNotification("key", "1179000899", "sess-1", NotificationStatusPaid, sig))
	assert.False(t, VerifyNotification("other", "1179000899", "sess-1", NotificationStatusPaid, sig))
	assert.False(t, VerifyNotification("key", "1179000899", "sess-2", NotificationStatusPaid, sig))
	assert.False(t, VerifyNotification("key", "1179000899", "sess-1", NotificationStatusPending, sig))
	assert.False(t, VerifyNotification("key", "1179000899", "sess-1", NotificationStatusPaid, ""))
}

func TestMapBankCodeToIPAYMU(t *testing.T) {
	assert.Equal(t, BankMandiri, MapBankCodeToIPAYMU("Mandiri"))
	assert.Equal(t, BankBNI, MapBankCodeToIPAYMU("bni"))
	assert.Equal(t, BankBCA, MapBankCodeToIPAYMU("unknown"))
}

func TestCreateDirectVA(t *testing.T) {
	var got DirectPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/payment/direct", r.URL.Path)
		assert.Equal(t, "1179000899", r.Header.Get("va"))
		assert.NotEmpty(t, r.Header.Get("signature"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"Status":200,"Message":"success","Data":{"SessionId":"sess-9","PaymentNo":"8808123","Expired":"2030-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{VA: "1179000899", APIKey: "key", BaseURL: srv.URL, NotifyURL: "https://example.com/hook"})
	resp, err := client.CreateDirectVA(context.Background(), "evt-1", 12, BankBNI, Payer{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "sess-9", resp.SessionID)
	assert.Equal(t, "8808123", resp.VANumber)
	assert.Equal(t, 2030, resp.ExpiresAt.Year())
	assert.Equal(t, int64(12), got.Amount)
	assert.Equal(t, "bni", got.PaymentChannel)
	assert.Equal(t, "evt-1", got.ReferenceID)
}

func TestCreateDirectVA_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Status":401,"Message":"unauthorized"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{VA: "va", APIKey: "key", BaseURL: srv.URL})
	_, err := client.CreateDirectVA(context.Background(), "evt-1", 12, BankBCA, Payer{})
	assert.Error(t, err)
}
