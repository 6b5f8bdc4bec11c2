package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/boostify/storefront/internal"
)

// Payoneer calls the Payoneer payout-program API over HTTP. Requests carry
// the program API key; all calls run under the configured timeout.
type Payoneer struct {
	client    *http.Client
	apiURL    string
	apiKey    string
	programID string
	logger    *slog.Logger
}

func NewPayoneer(cfg Config, logger *slog.Logger) *Payoneer {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Payoneer{
		client:    &http.Client{Timeout: timeout},
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		programID: cfg.ProgramID,
		logger:    logger,
	}
}

func (p *Payoneer) Name() string {
	return "payoneer"
}

type payoneerIntentResponse struct {
	PaymentURL string `json:"payment_url"`
	Token      string `json:"token"`
	Status     string `json:"status"`
}

func (p *Payoneer) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payload := map[string]interface{}{
		"client_session_id": req.TransactionID,
		"amount":            req.Amount,
		"currency":          req.Currency,
		"description":       req.Description,
	}

	var out payoneerIntentResponse
	if err := p.post(ctx, fmt.Sprintf("/v2/programs/%s/payments", p.programID), payload, &out); err != nil {
		p.logger.Error("payoneer intent creation failed",
			"error", err, "transaction_id", req.TransactionID, "amount", req.Amount)
		return nil, err
	}

	p.logger.Info("payoneer intent created",
		"transaction_id", req.TransactionID, "token", out.Token)

	return &Intent{
		RedirectURL: out.PaymentURL,
		GatewayRef:  out.Token,
	}, nil
}

type payoneerPayoutResponse struct {
	PayoutID string `json:"payout_id"`
	Status   string `json:"status"`
}

func (p *Payoneer) SendPayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error) {
	if req.Recipient == FailureSimRecipient {
		return nil, errors.NewValidationError("payout recipient rejected by gateway", errors.ErrCodePayoutRejected)
	}

	payload := map[string]interface{}{
		"payee_id": req.Recipient,
		"amount":   req.Amount,
		"currency": req.Currency,
	}

	var out payoneerPayoutResponse
	if err := p.post(ctx, fmt.Sprintf("/v2/programs/%s/payouts", p.programID), payload, &out); err != nil {
		p.logger.Error("payoneer payout failed", "error", err, "recipient", req.Recipient)
		return nil, err
	}

	p.logger.Info("payoneer payout sent", "payout_id", out.PayoutID, "recipient", req.Recipient)

	return &PayoutResult{
		Reference: out.PayoutID,
		SentAt:    time.Now(),
	}, nil
}

func (p *Payoneer) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
