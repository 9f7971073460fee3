package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpatel/profilesync-backend/config"
	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/pkg/payment/razorpay"
	"github.com/hpatel/profilesync-backend/pkg/profileapi"
)

type fakePaymentAPI struct {
	mu        sync.Mutex
	orderSeq  int
	failOrder bool

	verifySuccess bool
	verifyErr     error
	verifyCalls   []profileapi.VerifyPaymentRequest

	hasPaid   bool
	statusErr error
}

func (f *fakePaymentAPI) CreateOrder(ctx context.Context, token string, req profileapi.CreateOrderRequest) (*profileapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOrder {
		return nil, errors.New("order endpoint unavailable")
	}
	f.orderSeq++
	return &profileapi.Order{
		OrderID:       fmt.Sprintf("order_%d", f.orderSeq),
		AmountInPaise: req.Amount,
		Currency:      req.Currency,
		RazorpayKey:   "rzp_test_key",
	}, nil
}

func (f *fakePaymentAPI) VerifyPayment(ctx context.Context, token string, req profileapi.VerifyPaymentRequest) (*profileapi.VerifyPaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls = append(f.verifyCalls, req)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if !f.verifySuccess {
		return &profileapi.VerifyPaymentResponse{Success: false, Message: "signature mismatch"}, nil
	}
	return &profileapi.VerifyPaymentResponse{Success: true}, nil
}

func (f *fakePaymentAPI) PaymentStatus(ctx context.Context, token string) (*profileapi.PaymentStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &profileapi.PaymentStatusResponse{HasPaid: f.hasPaid}, nil
}

type recordedTxn struct {
	status model.TransactionStatus
	order  string
}

type fakeTxnRecorder struct {
	mu      sync.Mutex
	records []recordedTxn
}

func (f *fakeTxnRecorder) Record(userID string, draft *model.PendingProfileDraft, paymentID string, status model.TransactionStatus, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedTxn{status: status, order: draft.OrderID})
	return nil
}

func (f *fakeTxnRecorder) List(userID string) ([]model.PaymentTransaction, error) {
	return nil, nil
}

func (f *fakeTxnRecorder) ExportXLSX(userID string) ([]byte, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(userID, eventType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

type pendingTestEnv struct {
	svc      PendingCreationService
	drafts   repository.DraftStore
	repo     *fakeProfileRepo
	payments *fakePaymentAPI
	txns     *fakeTxnRecorder
	notifier *fakeNotifier
}

func setupPendingTest(t *testing.T, existing []model.BusinessProfile) *pendingTestEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &fakeProfileRepo{profiles: existing}
	ids := &fakeIdentityStore{}
	ids.set(*testIdentity())
	drafts := repository.NewDraftStore(client)
	payments := &fakePaymentAPI{verifySuccess: true}
	txns := &fakeTxnRecorder{}
	notifier := &fakeNotifier{}

	svc := NewPendingCreationService(drafts, ids, repo, payments, txns, notifier, config.RazorpayConfig{
		Key:           "rzp_test_key",
		Secret:        "test-secret",
		AmountInPaise: 49900,
		Currency:      "INR",
		DisplayName:   "Business Profiles",
		ThemeColor:    "#667eea",
	})

	return &pendingTestEnv{
		svc:      svc,
		drafts:   drafts,
		repo:     repo,
		payments: payments,
		txns:     txns,
		notifier: notifier,
	}
}

func testForm(name string) model.ProfileForm {
	return model.ProfileForm{
		Name:     name,
		Category: "Retail",
		Address:  "12 MG Road",
		Phone:    "9876543210",
		Email:    "owner@pateltraders.in",
	}
}

func existingProfiles() []model.BusinessProfile {
	return []model.BusinessProfile{
		{
			ID:        "prof-canonical",
			Name:      "Patel Traders",
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func signedResponse(orderID, paymentID string) razorpay.CheckoutResponse {
	return razorpay.CheckoutResponse{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: razorpay.SignPayload(orderID, paymentID, "test-secret"),
	}
}

func TestSubmit_InvalidFormRejectedBeforePersistence(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, model.ProfileForm{Name: "Incomplete"})
	assert.ErrorIs(t, err, model.ErrInvalidForm)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestSubmit_FirstProfileCreatedWithoutPayment(t *testing.T) {
	env := setupPendingTest(t, nil)

	result, err := env.svc.Submit(context.Background(), testSession, testForm("First Shop"))
	require.NoError(t, err)

	assert.Equal(t, model.DraftStateCreated, result.State)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "First Shop", result.Profile.Name)
	assert.Nil(t, result.Checkout)
	assert.Equal(t, 0, env.payments.orderSeq)
}

func TestSubmit_SecondProfileEntersPaymentGate(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	result, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	assert.Equal(t, model.DraftStateAwaitingPayment, result.State)
	assert.Nil(t, result.Profile)
	require.NotNil(t, result.Checkout)
	assert.Equal(t, "order_1", result.Checkout.OrderID)
	assert.Equal(t, int64(49900), result.Checkout.Amount)
	assert.Equal(t, "Patel Traders", result.Checkout.Prefill.Name)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, int64(1), draft.Token)
	assert.Equal(t, "order_1", draft.OrderID)
	assert.Equal(t, "Second Shop", draft.Form.Name)
	assert.Equal(t, model.DraftSchemaVersion, draft.SchemaVersion)
}

func TestSubmit_OrderFailureKeepsDraft(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())
	env.payments.failOrder = true

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	assert.ErrorIs(t, err, ErrPaymentOrderFailed)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Second Shop", draft.Form.Name)
	assert.Empty(t, draft.OrderID)
}

func TestHandleCheckoutSuccess_FinalizesFromPersistedDraft(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	profile, err := env.svc.HandleCheckoutSuccess(context.Background(), testSession, signedResponse("order_1", "pay_1"))
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Second Shop", profile.Name)

	// Draft consumed, success transaction recorded, events pushed.
	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	assert.Nil(t, draft)

	require.Len(t, env.txns.records, 1)
	assert.Equal(t, model.TransactionStatusSuccess, env.txns.records[0].status)
	assert.Contains(t, env.notifier.events, "payment_verified")
	assert.Contains(t, env.notifier.events, "profile_created")

	// Server-side verification carried the draft's amount context.
	require.Len(t, env.payments.verifyCalls, 1)
	assert.Equal(t, int64(49900), env.payments.verifyCalls[0].Amount)
	assert.Equal(t, "INR", env.payments.verifyCalls[0].Currency)
	assert.Equal(t, "business_profile", env.payments.verifyCalls[0].Type)

	state, err := env.svc.State(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateIdle, state)
}

func TestHandleCheckoutSuccess_ForgedSignatureRejected(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	_, err = env.svc.HandleCheckoutSuccess(context.Background(), testSession, razorpay.CheckoutResponse{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "forged",
	})
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	assert.Empty(t, env.payments.verifyCalls)
}

func TestHandleCheckoutSuccess_NoDraft(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.HandleCheckoutSuccess(context.Background(), testSession, signedResponse("order_1", "pay_1"))
	assert.ErrorIs(t, err, ErrNoPendingDraft)
}

func TestHandleCheckoutSuccess_ReplacedDraftIgnoresOldOrder(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Old Shop"))
	require.NoError(t, err)

	_, err = env.svc.Submit(context.Background(), testSession, testForm("New Shop"))
	require.NoError(t, err)

	// Confirmation for the first order must not create a profile from the
	// discarded form.
	_, err = env.svc.HandleCheckoutSuccess(context.Background(), testSession, signedResponse("order_1", "pay_1"))
	assert.ErrorIs(t, err, ErrStaleDraft)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "New Shop", draft.Form.Name)
	assert.Equal(t, int64(2), draft.Token)
	assert.Len(t, env.repo.profiles, 1)
}

func TestHandleCheckoutSuccess_VerificationRejectedKeepsDraft(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())
	env.payments.verifySuccess = false

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	_, err = env.svc.HandleCheckoutSuccess(context.Background(), testSession, signedResponse("order_1", "pay_1"))
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	require.NotNil(t, draft)

	require.Len(t, env.txns.records, 1)
	assert.Equal(t, model.TransactionStatusFailed, env.txns.records[0].status)
	assert.Len(t, env.repo.profiles, 1)
}

func TestResumeOnFocus_NoDraftIsIdle(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	result, err := env.svc.ResumeOnFocus(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateIdle, result.State)
}

func TestResumeOnFocus_PendingCheckoutDoesNotPoll(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	// The in-memory order is still pending; the callback is expected.
	env.payments.hasPaid = true
	result, err := env.svc.ResumeOnFocus(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateAwaitingPayment, result.State)
	assert.Len(t, env.repo.profiles, 1)
}

func TestResumeOnFocus_FinalizesAfterRestart(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)
	env.payments.hasPaid = true

	// A fresh service instance has no in-memory pending order, like after a
	// process restart; only the persisted draft remains.
	ids := &fakeIdentityStore{}
	ids.set(*testIdentity())
	svc := NewPendingCreationService(env.drafts, ids, env.repo, env.payments, env.txns, env.notifier, config.RazorpayConfig{
		Secret:        "test-secret",
		AmountInPaise: 49900,
		Currency:      "INR",
	})

	result, err := svc.ResumeOnFocus(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateCreated, result.State)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "Second Shop", result.Profile.Name)

	draft, err := env.drafts.Get(context.Background(), testSession.UserID)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestResumeOnFocus_UnpaidStaysAwaitingPayment(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	ids := &fakeIdentityStore{}
	ids.set(*testIdentity())
	svc := NewPendingCreationService(env.drafts, ids, env.repo, env.payments, env.txns, env.notifier, config.RazorpayConfig{
		AmountInPaise: 49900,
		Currency:      "INR",
	})

	result, err := svc.ResumeOnFocus(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateAwaitingPayment, result.State)
	assert.Len(t, env.repo.profiles, 1)
}

func TestAbandon_ReturnsToIdle(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	_, err := env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	require.NoError(t, env.svc.Abandon(context.Background(), testSession))

	state, err := env.svc.State(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateIdle, state)
}

func TestState_ReflectsDraftProgress(t *testing.T) {
	env := setupPendingTest(t, existingProfiles())

	state, err := env.svc.State(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateIdle, state)

	env.payments.failOrder = true
	_, _ = env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))

	state, err = env.svc.State(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateDraftSaved, state)

	env.payments.failOrder = false
	_, err = env.svc.Submit(context.Background(), testSession, testForm("Second Shop"))
	require.NoError(t, err)

	state, err = env.svc.State(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateAwaitingPayment, state)
}
