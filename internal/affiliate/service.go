package affiliate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/paymentgateway"
	"github.com/google/uuid"
)

// Repository defines the data access methods for affiliates.
type Repository interface {
	Create(a *Affiliate) error
	GetByID(id int64) (*Affiliate, error)
	GetByUserID(userID int64) (*Affiliate, error)
	GetByReferralCode(code string) (*Affiliate, error)
	GetPayoutRequests(limit, offset int) ([]*PayoutRequest, error)
	GetRecipientEmail(affiliateID int64) (string, error)
	AddEarnings(affiliateID int64, amount int64) error
	// SettlePayout zeroes requested earnings and accumulates total paid,
	// conditional on the earnings still matching what was sent.
	SettlePayout(affiliateID int64, amount int64, paidAt time.Time) (bool, error)
	GetReferrerCodeForUser(userID int64) (*string, error)
}

type Service struct {
	repo    Repository
	gateway paymentgateway.Gateway
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, gateway paymentgateway.Gateway, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		bus:     bus,
		logger:  logger,
	}
}

// RegisterSubscribers attaches commission accrual to the event bus: every
// successfully paid order credits the referrer of the paying customer.
func (s *Service) RegisterSubscribers(bus *events.EventBus) {
	bus.Subscribe(events.PaymentCompletedEventType, s.onPaymentCompleted)
}

func (s *Service) onPaymentCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	code, err := s.repo.GetReferrerCodeForUser(completed.UserID)
	if err != nil {
		return err
	}
	if code == nil || *code == "" {
		return nil
	}

	aff, err := s.repo.GetByReferralCode(*code)
	if err != nil {
		// A mistyped referral at signup is not an error worth failing the
		// callback over.
		s.logger.Warn("referral code does not match any affiliate",
			"code", *code, "user_id", completed.UserID)
		return nil
	}

	commission := completed.Amount * CommissionPercent / 100
	if commission <= 0 {
		return nil
	}

	if err := s.repo.AddEarnings(aff.ID, commission); err != nil {
		s.logger.Error("failed to credit affiliate commission",
			"error", err, "affiliate_id", aff.ID, "amount", commission)
		return err
	}

	s.logger.Info("affiliate commission credited",
		"affiliate_id", aff.ID,
		"referral_code", aff.ReferralCode,
		"amount", commission,
		"order_id", completed.OrderID)
	return nil
}

// GetOrCreateForUser returns the caller's affiliate profile, creating one
// with a fresh referral code on first access.
func (s *Service) GetOrCreateForUser(userID int64) (*Affiliate, error) {
	aff, err := s.repo.GetByUserID(userID)
	if err == nil {
		return aff, nil
	}
	if err != errors.ErrAffiliateNotFound {
		return nil, err
	}

	aff = &Affiliate{
		UserID:       userID,
		ReferralCode: newReferralCode(),
	}
	if err := s.repo.Create(aff); err != nil {
		return nil, errors.NewInternalError("failed to create affiliate", err)
	}

	s.logger.Info("affiliate created", "affiliate_id", aff.ID, "user_id", userID)
	return aff, nil
}

// ListPayoutRequests returns affiliates with positive requested earnings.
func (s *Service) ListPayoutRequests(limit, offset int) ([]*PayoutRequest, error) {
	return s.repo.GetPayoutRequests(limit, offset)
}

// PayAffiliate sends the affiliate's requested earnings through the gateway
// and, only after the gateway accepts, zeroes the balance and accumulates the
// running total. A rejected payout leaves the affiliate untouched.
func (s *Service) PayAffiliate(ctx context.Context, affiliateID int64) (*Affiliate, error) {
	aff, err := s.repo.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}

	if !aff.HasPayableEarnings() {
		return nil, errors.ErrNothingToPayout
	}

	recipient, err := s.repo.GetRecipientEmail(affiliateID)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve payout recipient", err)
	}

	amount := aff.RequestedEarnings

	result, err := s.gateway.SendPayout(ctx, paymentgateway.PayoutRequest{
		Recipient: recipient,
		Amount:    amount,
		Currency:  "USD",
	})
	if err != nil {
		s.logger.Warn("affiliate payout rejected by gateway",
			"error", err, "affiliate_id", affiliateID, "recipient", recipient, "amount", amount)
		return nil, err
	}

	applied, err := s.repo.SettlePayout(affiliateID, amount, result.SentAt)
	if err != nil {
		return nil, errors.NewInternalError("failed to record payout", err)
	}
	if !applied {
		// Earnings moved while the payout was in flight. The money is sent;
		// log loudly so an operator reconciles it.
		s.logger.Error("payout sent but balance changed concurrently",
			"affiliate_id", affiliateID, "amount", amount, "gateway_ref", result.Reference)
		return nil, errors.NewInternalError("payout balance changed during settlement", nil)
	}

	event := events.NewPayoutSentEvent(aff.ID, aff.UserID, amount, result.Reference)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payout event", "error", err, "affiliate_id", aff.ID)
	}

	s.logger.Info("affiliate payout sent",
		"affiliate_id", affiliateID,
		"amount", amount,
		"gateway_ref", result.Reference)

	return s.repo.GetByID(affiliateID)
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
