package paymentgateway

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/boostify/storefront/internal"
)

// FailureSimRecipient is a reserved payout address: every gateway
// implementation rejects payouts to it, which gives operators a way to
// exercise the failure path end to end.
const FailureSimRecipient = "fail@simulation.invalid"

type IntentRequest struct {
	TransactionID string
	Amount        int64
	Currency      string
	Description   string
}

// Intent is the gateway-side session for an external payment: the URL the
// customer is redirected to and the gateway's own reference token.
type Intent struct {
	RedirectURL string
	GatewayRef  string
}

type PayoutRequest struct {
	Recipient string
	Amount    int64
	Currency  string
}

type PayoutResult struct {
	Reference string
	SentAt    time.Time
}

// Gateway abstracts the payment provider. The adapter trusts its caller: the
// route layer is responsible for deriving Amount from stored state.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	SendPayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error)
}

type Config struct {
	Provider       string
	Enabled        bool
	APIURL         string
	APIKey         string
	ProgramID      string
	WebhookURL     string
	RequestTimeout time.Duration
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

// New selects the configured provider. A disabled configuration still yields
// a usable Gateway whose operations fail with the disabled error, so the rest
// of the wiring never has to nil-check.
func New(cfg Config, logger *slog.Logger) Gateway {
	if !cfg.Enabled {
		return &disabledGateway{provider: cfg.Provider}
	}

	switch cfg.Provider {
	case "payoneer":
		return NewPayoneer(cfg, logger)
	default:
		return NewMock(cfg, logger)
	}
}

type disabledGateway struct {
	provider string
}

func (d *disabledGateway) Name() string {
	return d.provider
}

func (d *disabledGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	return nil, errors.ErrGatewayDisabled
}

func (d *disabledGateway) SendPayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error) {
	return nil, errors.ErrGatewayDisabled
}
