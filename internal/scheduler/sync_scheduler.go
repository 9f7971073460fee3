package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/internal/app/service"
	"github.com/hpatel/profilesync-backend/pkg/logger"
)

// SyncScheduler is the single entry point for reconciliation and payment
// resume checks. Every profile list load funnels through OnProfileListLoad;
// view focus events funnel through OnViewFocus.
type SyncScheduler struct {
	cron       *cron.Cron
	pollSpec   string
	debounce   time.Duration
	reconciler service.ReconcilerService
	pending    service.PendingCreationService
	profiles   repository.ProfileRepository
	identities repository.IdentityStore
	drafts     repository.DraftStore

	reconciling sync.Map // userID -> struct{}

	mu        sync.Mutex
	lastFocus map[string]time.Time
}

func NewSyncScheduler(
	pollSpec string,
	debounce time.Duration,
	reconciler service.ReconcilerService,
	pending service.PendingCreationService,
	profiles repository.ProfileRepository,
	identities repository.IdentityStore,
	drafts repository.DraftStore,
) *SyncScheduler {
	return &SyncScheduler{
		cron:       cron.New(),
		pollSpec:   pollSpec,
		debounce:   debounce,
		reconciler: reconciler,
		pending:    pending,
		profiles:   profiles,
		identities: identities,
		drafts:     drafts,
		lastFocus:  make(map[string]time.Time),
	}
}

// OnProfileListLoad fetches the user's profiles, reconciles them against the
// identity record and returns the post-reconcile list, oldest first. A second
// concurrent call for the same user is dropped, not queued.
func (s *SyncScheduler) OnProfileListLoad(ctx context.Context, sess model.Session) ([]model.BusinessProfile, error) {
	profiles, err := s.profiles.ListByOwner(ctx, sess)
	if err != nil {
		return nil, err
	}
	model.SortOldestFirst(profiles)

	if _, busy := s.reconciling.LoadOrStore(sess.UserID, struct{}{}); busy {
		logger.Debug("Reconcile already running, returning unreconciled list", map[string]interface{}{
			"user_id": sess.UserID,
		})
		return profiles, nil
	}
	defer s.reconciling.Delete(sess.UserID)

	identity, err := s.identities.Get(ctx, sess.UserID)
	if err != nil {
		// No identity record means nothing authoritative to push.
		return profiles, nil
	}

	result := s.reconciler.Reconcile(ctx, sess, identity, profiles)
	if result.UpdatedCanonical || len(result.RolledBackFields) > 0 || len(result.LogosStrippedFrom) > 0 {
		refreshed, err := s.profiles.ListByOwner(ctx, sess)
		if err != nil {
			// Serve the pre-refresh list; the writes already landed.
			return profiles, nil
		}
		model.SortOldestFirst(refreshed)
		return refreshed, nil
	}
	return profiles, nil
}

// OnViewFocus runs the payment resume check, debounced per user so rapid
// focus flapping does not hammer the upstream status endpoint.
func (s *SyncScheduler) OnViewFocus(ctx context.Context, sess model.Session) (*service.ResumeResult, error) {
	if !s.shouldRunFocus(sess.UserID) {
		state, err := s.pending.State(ctx, sess)
		if err != nil {
			return nil, err
		}
		return &service.ResumeResult{State: state}, nil
	}
	return s.pending.ResumeOnFocus(ctx, sess)
}

func (s *SyncScheduler) shouldRunFocus(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastFocus[userID]; ok && now.Sub(last) < s.debounce {
		return false
	}
	s.lastFocus[userID] = now
	return true
}

// Start launches the draft recovery loop. It scans the persisted drafts and
// runs the resume check for each, covering payments that completed while the
// process (or the app) was gone.
func (s *SyncScheduler) Start() error {
	_, err := s.cron.AddFunc(s.pollSpec, s.recoverPendingDrafts)
	if err != nil {
		logger.Error("Failed to schedule draft recovery job", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Draft recovery scheduler started", map[string]interface{}{
		"spec": s.pollSpec,
	})
	return nil
}

func (s *SyncScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Draft recovery scheduler stopped", nil)
}

func (s *SyncScheduler) recoverPendingDrafts() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userIDs, err := s.drafts.ListUserIDs(ctx)
	if err != nil {
		logger.Error("Draft recovery scan failed", err, nil)
		return
	}

	for _, userID := range userIDs {
		draft, err := s.drafts.Get(ctx, userID)
		if err != nil || draft == nil {
			continue
		}
		if draft.OrderID == "" || draft.SessionToken == "" {
			continue
		}

		sess := model.Session{UserID: userID, Token: draft.SessionToken}
		result, err := s.pending.ResumeOnFocus(ctx, sess)
		if err != nil {
			logger.Error("Draft recovery resume failed", err, map[string]interface{}{
				"user_id": userID,
			})
			continue
		}
		if result.State == model.DraftStateCreated {
			logger.Info("Draft recovered into a created profile", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}
