package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hpatel/profilesync-backend/config"
	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	"github.com/hpatel/profilesync-backend/pkg/payment/razorpay"
	"github.com/hpatel/profilesync-backend/pkg/profileapi"
)

var (
	ErrPaymentOrderFailed        = errors.New("payment order creation failed")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrNoPendingDraft            = errors.New("no pending profile draft")
	ErrStaleDraft                = errors.New("payment belongs to a replaced draft")
	ErrVerificationInFlight      = errors.New("a verification is already in flight")
)

// PaymentAPI is the slice of the upstream client the workflow needs.
type PaymentAPI interface {
	CreateOrder(ctx context.Context, token string, req profileapi.CreateOrderRequest) (*profileapi.Order, error)
	VerifyPayment(ctx context.Context, token string, req profileapi.VerifyPaymentRequest) (*profileapi.VerifyPaymentResponse, error)
	PaymentStatus(ctx context.Context, token string) (*profileapi.PaymentStatusResponse, error)
}

// EventNotifier pushes workflow events to the app. Optional; a nil notifier
// disables pushes.
type EventNotifier interface {
	Notify(userID, eventType string, data interface{})
}

// SubmitResult is the outcome of submitting a profile form.
type SubmitResult struct {
	State      model.DraftState          `json:"state"`
	Profile    *model.BusinessProfile    `json:"profile,omitempty"`
	DraftToken int64                     `json:"draftToken,omitempty"`
	Checkout   *razorpay.CheckoutOptions `json:"checkout,omitempty"`
}

// ResumeResult is the outcome of a focus/recovery check.
type ResumeResult struct {
	State   model.DraftState       `json:"state"`
	Profile *model.BusinessProfile `json:"profile,omitempty"`
}

// PendingCreationService gates creation of additional (non-canonical)
// business profiles behind payment verification.
//
// States: idle -> draft_saved -> awaiting_payment -> verifying -> created.
// Only the persisted draft survives a restart; finalization always works
// from persisted state, never from in-memory leftovers.
type PendingCreationService interface {
	Submit(ctx context.Context, sess model.Session, form model.ProfileForm) (*SubmitResult, error)
	HandleCheckoutSuccess(ctx context.Context, sess model.Session, resp razorpay.CheckoutResponse) (*model.BusinessProfile, error)
	ResumeOnFocus(ctx context.Context, sess model.Session) (*ResumeResult, error)
	Abandon(ctx context.Context, sess model.Session) error
	State(ctx context.Context, sess model.Session) (model.DraftState, error)
}

type pendingOrder struct {
	draftToken int64
	orderID    string
}

type pendingCreationService struct {
	drafts     repository.DraftStore
	identities repository.IdentityStore
	profiles   repository.ProfileRepository
	payments   PaymentAPI
	txns       TransactionService
	events     EventNotifier
	rzp        config.RazorpayConfig

	// pending tracks the in-memory order per user; verifying is the
	// at-most-one-verification-in-flight guard.
	pending   sync.Map // userID -> *pendingOrder
	verifying sync.Map // userID -> struct{}
}

// NewPendingCreationService creates the payment-gated creation workflow.
func NewPendingCreationService(
	drafts repository.DraftStore,
	identities repository.IdentityStore,
	profiles repository.ProfileRepository,
	payments PaymentAPI,
	txns TransactionService,
	events EventNotifier,
	rzp config.RazorpayConfig,
) PendingCreationService {
	return &pendingCreationService{
		drafts:     drafts,
		identities: identities,
		profiles:   profiles,
		payments:   payments,
		txns:       txns,
		events:     events,
		rzp:        rzp,
	}
}

func (s *pendingCreationService) Submit(ctx context.Context, sess model.Session, form model.ProfileForm) (*SubmitResult, error) {
	// Malformed drafts are rejected before anything is persisted.
	if err := form.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.profiles.ListByOwner(ctx, sess)
	if err != nil {
		return nil, err
	}

	// The first profile is the registration (canonical) profile; it is not
	// a paid add-on.
	if len(existing) == 0 {
		profile, err := s.profiles.Create(ctx, sess, form)
		if err != nil {
			return nil, err
		}
		s.notify(sess.UserID, "profile_created", profile)
		return &SubmitResult{State: model.DraftStateCreated, Profile: profile}, nil
	}

	token, err := s.drafts.NextToken(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	// Persist synchronously before any network call so the form survives an
	// order-creation failure. A new submission replaces any older draft.
	draft := &model.PendingProfileDraft{
		Token:        token,
		Form:         form,
		SessionToken: sess.Token,
		CreatedAt:    time.Now(),
	}
	if err := s.drafts.Save(ctx, sess.UserID, draft); err != nil {
		return nil, err
	}
	s.pending.Delete(sess.UserID)

	order, err := s.payments.CreateOrder(ctx, sess.Token, profileapi.CreateOrderRequest{
		Amount:   s.rzp.AmountInPaise,
		Currency: s.rzp.Currency,
	})
	if err != nil {
		logger.Error("Payment order creation failed, draft preserved", err, map[string]interface{}{
			"user_id":     sess.UserID,
			"draft_token": token,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentOrderFailed, err)
	}

	draft.OrderID = order.OrderID
	draft.Amount = order.AmountInPaise
	draft.Currency = order.Currency
	if err := s.drafts.Save(ctx, sess.UserID, draft); err != nil {
		return nil, err
	}

	s.pending.Store(sess.UserID, &pendingOrder{draftToken: token, orderID: order.OrderID})

	logger.Info("Draft awaiting payment", map[string]interface{}{
		"user_id":     sess.UserID,
		"draft_token": token,
		"order_id":    order.OrderID,
	})

	return &SubmitResult{
		State:      model.DraftStateAwaitingPayment,
		DraftToken: token,
		Checkout:   s.checkoutOptions(ctx, sess, order),
	}, nil
}

func (s *pendingCreationService) HandleCheckoutSuccess(ctx context.Context, sess model.Session, resp razorpay.CheckoutResponse) (*model.BusinessProfile, error) {
	if err := resp.Validate(); err != nil {
		return nil, err
	}

	// Reject obviously forged callbacks before touching the network.
	if s.rzp.Secret != "" {
		if err := razorpay.VerifySignature(resp, s.rzp.Secret); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
		}
	}

	release, err := s.acquireVerifying(sess.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	draft, err := s.drafts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrNoPendingDraft
	}

	// A confirmation for an order that belongs to a replaced draft must not
	// create a profile from the discarded form.
	if draft.OrderID != "" && draft.OrderID != resp.OrderID {
		logger.Warn("Checkout confirmed for a replaced draft, ignoring", map[string]interface{}{
			"user_id":        sess.UserID,
			"draft_order_id": draft.OrderID,
			"paid_order_id":  resp.OrderID,
		})
		return nil, ErrStaleDraft
	}

	verifyResp, err := s.payments.VerifyPayment(ctx, sess.Token, profileapi.VerifyPaymentRequest{
		OrderID:   resp.OrderID,
		PaymentID: resp.PaymentID,
		Signature: resp.Signature,
		Amount:    draft.Amount,
		Currency:  draft.Currency,
		Type:      profileapi.PaymentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
	}
	if !verifyResp.Success {
		s.recordTransaction(sess.UserID, draft, resp.PaymentID, model.TransactionStatusFailed, verifyResp.Message)
		return nil, fmt.Errorf("%w: %s", ErrPaymentVerificationFailed, verifyResp.Message)
	}

	return s.finalize(ctx, sess, draft, resp.PaymentID)
}

func (s *pendingCreationService) ResumeOnFocus(ctx context.Context, sess model.Session) (*ResumeResult, error) {
	release, err := s.acquireVerifying(sess.UserID)
	if err != nil {
		return &ResumeResult{State: model.DraftStateVerifying}, nil
	}
	defer release()

	draft, err := s.drafts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return &ResumeResult{State: model.DraftStateIdle}, nil
	}

	// An in-memory order for this draft means the checkout callback is still
	// expected; don't race it with a poll.
	if p, ok := s.pending.Load(sess.UserID); ok && p.(*pendingOrder).draftToken == draft.Token {
		return &ResumeResult{State: model.DraftStateAwaitingPayment}, nil
	}

	if draft.OrderID == "" {
		return &ResumeResult{State: model.DraftStateDraftSaved}, nil
	}

	status, err := s.payments.PaymentStatus(ctx, sess.Token)
	if err != nil {
		logger.Error("Payment status poll failed", err, map[string]interface{}{
			"user_id": sess.UserID,
		})
		return &ResumeResult{State: model.DraftStateAwaitingPayment}, nil
	}
	if !status.HasPaid {
		return &ResumeResult{State: model.DraftStateAwaitingPayment}, nil
	}

	// The payment completed while the app was away (e.g. killed before the
	// checkout callback ran). Finalize from the persisted draft.
	logger.Info("Resuming completed payment from persisted draft", map[string]interface{}{
		"user_id":     sess.UserID,
		"draft_token": draft.Token,
		"order_id":    draft.OrderID,
	})

	profile, err := s.finalize(ctx, sess, draft, "")
	if err != nil {
		return nil, err
	}
	return &ResumeResult{State: model.DraftStateCreated, Profile: profile}, nil
}

func (s *pendingCreationService) Abandon(ctx context.Context, sess model.Session) error {
	if err := s.drafts.Delete(ctx, sess.UserID); err != nil {
		return err
	}
	s.pending.Delete(sess.UserID)

	logger.Info("Pending draft abandoned", map[string]interface{}{
		"user_id": sess.UserID,
	})
	return nil
}

func (s *pendingCreationService) State(ctx context.Context, sess model.Session) (model.DraftState, error) {
	if _, ok := s.verifying.Load(sess.UserID); ok {
		return model.DraftStateVerifying, nil
	}

	draft, err := s.drafts.Get(ctx, sess.UserID)
	if err != nil {
		return model.DraftStateIdle, err
	}
	if draft == nil {
		return model.DraftStateIdle, nil
	}
	if draft.OrderID == "" {
		return model.DraftStateDraftSaved, nil
	}
	return model.DraftStateAwaitingPayment, nil
}

// finalize creates the profile from the persisted draft, deletes the draft
// and records the audit row. The draft is re-read after the create so a
// replacement that happened mid-flight is not deleted by mistake.
func (s *pendingCreationService) finalize(ctx context.Context, sess model.Session, draft *model.PendingProfileDraft, paymentID string) (*model.BusinessProfile, error) {
	profile, err := s.profiles.Create(ctx, sess, draft.Form)
	if err != nil {
		// Draft stays; the next resume retries the creation.
		return nil, err
	}

	current, err := s.drafts.Get(ctx, sess.UserID)
	if err == nil && (current == nil || current.Token == draft.Token) {
		if err := s.drafts.Delete(ctx, sess.UserID); err != nil {
			logger.Error("Failed to delete consumed draft", err, map[string]interface{}{
				"user_id": sess.UserID,
			})
		}
	}
	s.pending.Delete(sess.UserID)

	s.recordTransaction(sess.UserID, draft, paymentID, model.TransactionStatusSuccess, "Business profile purchase")
	s.notify(sess.UserID, "payment_verified", map[string]interface{}{"orderId": draft.OrderID})
	s.notify(sess.UserID, "profile_created", profile)

	logger.Info("Profile created from verified draft", map[string]interface{}{
		"user_id":     sess.UserID,
		"profile_id":  profile.ID,
		"draft_token": draft.Token,
	})
	return profile, nil
}

func (s *pendingCreationService) acquireVerifying(userID string) (func(), error) {
	if _, loaded := s.verifying.LoadOrStore(userID, struct{}{}); loaded {
		return nil, ErrVerificationInFlight
	}
	return func() { s.verifying.Delete(userID) }, nil
}

func (s *pendingCreationService) checkoutOptions(ctx context.Context, sess model.Session, order *profileapi.Order) *razorpay.CheckoutOptions {
	opts := &razorpay.CheckoutOptions{
		Key:         order.RazorpayKey,
		Amount:      order.AmountInPaise,
		Currency:    order.Currency,
		OrderID:     order.OrderID,
		Name:        s.rzp.DisplayName,
		Description: "Additional business profile",
		Theme:       razorpay.Theme{Color: s.rzp.ThemeColor},
	}
	if opts.Key == "" {
		opts.Key = s.rzp.Key
	}

	if identity, err := s.identities.Get(ctx, sess.UserID); err == nil {
		opts.Prefill = razorpay.Prefill{
			Name:    identity.DisplayName,
			Email:   identity.Email,
			Contact: identity.Phone,
		}
	}
	return opts
}

func (s *pendingCreationService) recordTransaction(userID string, draft *model.PendingProfileDraft, paymentID string, status model.TransactionStatus, description string) {
	if s.txns == nil {
		return
	}
	if err := s.txns.Record(userID, draft, paymentID, status, description); err != nil {
		logger.Error("Failed to record payment transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": draft.OrderID,
		})
	}
}

func (s *pendingCreationService) notify(userID, eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Notify(userID, eventType, data)
}
