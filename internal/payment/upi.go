package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/v-23-69/coinkart/internal/domain"
)

// UPIHandler submits a collect request to a UPI gateway. A gateway-side
// decline comes back as a non-success response, transport failures are errors.
type UPIHandler struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewUPIHandler(endpoint, apiKey string) *UPIHandler {
	return &UPIHandler{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type upiCollectResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func (h *UPIHandler) Accept(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	formData := url.Values{}
	formData.Set("order_id", req.OrderID.String())
	formData.Set("amount", req.Amount.Amount.StringFixed(2))
	formData.Set("currency", req.Amount.Currency.String())
	formData.Set("customer_phone", req.CustomerPhone)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/collect",
		strings.NewReader(formData.Encode()))
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("upi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.PaymentResponse{}, fmt.Errorf("upi gateway error %s: %s", resp.Status, string(respBody))
	}

	var collect upiCollectResponse
	if err := json.NewDecoder(resp.Body).Decode(&collect); err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("decode upi response: %w", err)
	}

	if collect.Status != "SUCCESS" {
		return domain.PaymentResponse{
			Success: false,
			Message: declineMessage(collect.Message, "UPI payment declined"),
			Method:  domain.PaymentMethodUPI,
		}, nil
	}

	return domain.PaymentResponse{
		Success:       true,
		Message:       "UPI payment captured",
		TransactionID: collect.TransactionID,
		Method:        domain.PaymentMethodUPI,
	}, nil
}

func declineMessage(gatewayMessage, fallback string) string {
	if gatewayMessage != "" {
		return gatewayMessage
	}
	return fallback
}
