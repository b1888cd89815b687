package ipaymu

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// BankCode represents supported bank codes for VA
type BankCode string

const (
	BankBCA     BankCode = "bca"
	BankMandiri BankCode = "mandiri"
	BankBNI     BankCode = "bni"
	BankBRI     BankCode = "bri"
	BankCIMB    BankCode = "cimb"
)

// Config holds iPaymu API configuration
type Config struct {
	VA        string // Virtual Account number (merchant VA)
	APIKey    string // API Key from iPaymu
	BaseURL   string // Base URL (sandbox or production)
	NotifyURL string // Webhook URL for payment notifications
}

const (
	directPaymentPath = "/api/v2/payment/direct"
	vaExpiryHours     = 24
)

// Notification statuses reported by iPaymu callbacks
const (
	NotificationStatusPaid    = "berhasil"
	NotificationStatusPending = "pending"
	NotificationStatusExpired = "expired"
)

// Client is the iPaymu API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// VAResponse represents the response from VA creation
type VAResponse struct {
	VANumber  string
	SessionID string
	ExpiresAt time.Time
}

// DirectPaymentRequest represents the request body for direct VA payment
type DirectPaymentRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Amount         int64  `json:"amount"`
	NotifyURL      string `json:"notifyUrl"`
	Expired        int    `json:"expired"` // Expiry in hours
	Comments       string `json:"comments"`
	ReferenceID    string `json:"referenceId"`
	PaymentMethod  string `json:"paymentMethod"`
	PaymentChannel string `json:"paymentChannel"`
}

// DirectPaymentResponse represents the iPaymu API response
type DirectPaymentResponse struct {
	Status  int    `json:"Status"`
	Message string `json:"Message"`
	Data    struct {
		SessionID     string `json:"SessionId"`
		TransactionID int64  `json:"TransactionId"`
		ReferenceID   string `json:"ReferenceId"`
		Via           string `json:"Via"`
		Channel       string `json:"Channel"`
		PaymentNo     string `json:"PaymentNo"` // This is the VA number
		PaymentName   string `json:"PaymentName"`
		Total         int64  `json:"Total"`
		Fee           int64  `json:"Fee"`
		Expired       string `json:"Expired"` // ISO date string
	} `json:"Data"`
}

// Payer identifies who the VA is issued to
type Payer struct {
	Name  string
	Email string
	Phone string
}

// NewClient creates a new iPaymu client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// generateSignature signs a request body:
// hmac_sha256(apiKey, METHOD:VA:sha256(body):apiKey), lowercase hex
func (c *Client) generateSignature(jsonBody []byte, method string) string {
	bodyHash := sha256.Sum256(jsonBody)
	stringToSign := strings.Join([]string{
		method,
		c.config.VA,
		strings.ToLower(hex.EncodeToString(bodyHash[:])),
		c.config.APIKey,
	}, ":")

	h := hmac.New(sha256.New, []byte(c.config.APIKey))
	h.Write([]byte(stringToSign))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

// CreateDirectVA creates a Virtual Account for direct payment
// referenceID is echoed back in the payment notification.
func (c *Client) CreateDirectVA(ctx context.Context, referenceID string, amount int64, bankCode BankCode, payer Payer) (*VAResponse, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + directPaymentPath

	reqBody := DirectPaymentRequest{
		Name:           payer.Name,
		Phone:          payer.Phone,
		Email:          payer.Email,
		Amount:         amount,
		NotifyURL:      c.config.NotifyURL,
		Expired:        vaExpiryHours,
		Comments:       fmt.Sprintf("Event listing: %s", referenceID),
		ReferenceID:    referenceID,
		PaymentMethod:  "va",
		PaymentChannel: string(bankCode),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	signature := c.generateSignature(jsonBody, "POST")

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("va", c.config.VA)
	req.Header.Set("signature", signature)
	req.Header.Set("timestamp", fmt.Sprintf("%d", time.Now().Unix()))

	log.Printf("[iPaymu] Calling %s with bank: %s, amount: %d", url, bankCode, amount)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[iPaymu] Response status: %d, body: %s", resp.StatusCode, string(respBody))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iPaymu API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp DirectPaymentResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Status != 200 {
		return nil, fmt.Errorf("iPaymu API error: %s", apiResp.Message)
	}

	expiresAt, _ := time.Parse(time.RFC3339, apiResp.Data.Expired)
	if expiresAt.IsZero() {
		expiresAt = time.Now().UTC().Add(vaExpiryHours * time.Hour)
	}

	return &VAResponse{
		VANumber:  apiResp.Data.PaymentNo,
		SessionID: apiResp.Data.SessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyNotification checks the signature of a payment callback.
// Formula: hex(hmac_sha256(apiKey, va + "." + sid + "." + status))
func VerifyNotification(apiKey, va, sid, status, providedSig string) bool {
	if providedSig == "" || apiKey == "" {
		return false
	}
	expected := SignNotification(apiKey, va, sid, status)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedSig)))
}

// SignNotification computes the callback signature for the given fields.
func SignNotification(apiKey, va, sid, status string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(va + "." + sid + "." + status))
	return hex.EncodeToString(mac.Sum(nil))
}

// MapBankCodeToIPAYMU converts the bank name sent by clients to an iPaymu bank code
func MapBankCodeToIPAYMU(bank string) BankCode {
	switch strings.ToUpper(bank) {
	case "BCA":
		return BankBCA
	case "MANDIRI":
		return BankMandiri
	case "BNI":
		return BankBNI
	case "BRI":
		return BankBRI
	case "CIMB":
		return BankCIMB
	default:
		return BankBCA
	}
}
