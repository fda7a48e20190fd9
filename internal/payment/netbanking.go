package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/v-23-69/coinkart/internal/domain"
)

// NetBankingHandler charges through an aggregator that fronts the bank
// networks.
type NetBankingHandler struct {
	endpoint   string
	merchantID string
	apiKey     string
	httpClient *http.Client
}

func NewNetBankingHandler(endpoint, merchantID, apiKey string) *NetBankingHandler {
	return &NetBankingHandler{
		endpoint:   endpoint,
		merchantID: merchantID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type netbankingChargeRequest struct {
	MerchantID    string `json:"merchant_id"`
	OrderID       string `json:"order_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
}

type netbankingChargeResponse struct {
	Charged     bool   `json:"charged"`
	ReferenceID string `json:"reference_id"`
	Reason      string `json:"reason"`
}

func (h *NetBankingHandler) Accept(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	payload, err := json.Marshal(netbankingChargeRequest{
		MerchantID:    h.merchantID,
		OrderID:       req.OrderID.String(),
		Amount:        req.Amount.Amount.StringFixed(2),
		Currency:      req.Amount.Currency.String(),
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/charges",
		strings.NewReader(string(payload)))
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.SetBasicAuth(h.merchantID, h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("netbanking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.PaymentResponse{}, fmt.Errorf("netbanking gateway error %s: %s", resp.Status, string(respBody))
	}

	var charge netbankingChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("decode netbanking response: %w", err)
	}

	if !charge.Charged {
		return domain.PaymentResponse{
			Success: false,
			Message: declineMessage(charge.Reason, "net banking payment declined"),
			Method:  domain.PaymentMethodNetBanking,
		}, nil
	}

	return domain.PaymentResponse{
		Success:       true,
		Message:       "net banking payment captured",
		TransactionID: charge.ReferenceID,
		Method:        domain.PaymentMethodNetBanking,
	}, nil
}
