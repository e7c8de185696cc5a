package achievement

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("achievement not found")
	ErrInvalidState = errors.New("action not allowed in the achievement's current state")
	ErrConflict     = errors.New("achievement was modified concurrently; refresh and retry")
	ErrForbidden    = errors.New("permission denied")

	errReasonRequired = errors.New("a rejection reason is required")
)

// maxSeenRequests bounds the request-id dedup cache.
const maxSeenRequests = 1024

type (
	Repository interface {
		CreateAchievement(ctx context.Context, a Achievement) (Achievement, error)
		GetAchievementByID(ctx context.Context, id string) (Achievement, error)
		// QueryAchievements applies AND operation on available QueryFilter fields
		// and returns results in insertion order by submission time.
		QueryAchievements(ctx context.Context, filter *QueryFilter) ([]Achievement, error)
		// UpdateAchievement persists field edits if the stored version matches
		// a.Version, bumping the version; ErrConflict otherwise.
		UpdateAchievement(ctx context.Context, a Achievement) (Achievement, error)
		// CompareAndSetStatus transitions the status if the stored version
		// matches, appending the decision (when non-nil) in the same atomic
		// step; ErrConflict on a lost race.
		CompareAndSetStatus(ctx context.Context, id string, version int, status Status, reason string, decision *ReviewDecision) (Achievement, error)
		// CompareAndSetRecommendation sets or clears the recommendation if the
		// stored version matches; ErrConflict on a lost race.
		CompareAndSetRecommendation(ctx context.Context, id string, version int, rec *Recommendation) (Achievement, error)
		DeleteAchievementsByID(ctx context.Context, ids ...string) error
		QueryDecisionsByAchievementID(ctx context.Context, achievementID string) ([]ReviewDecision, error)
	}

	Service interface {
		SaveDraft(ctx context.Context, actor user.User, na NewAchievement) (Achievement, error)
		Create(ctx context.Context, actor user.User, na NewAchievement) (Achievement, error)
		Submit(ctx context.Context, actor user.User, id string) (Achievement, error)
		Get(ctx context.Context, actor user.User, id string) (Achievement, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Achievement, error)
		Update(ctx context.Context, actor user.User, id string, ua UpdateAchievement) (Achievement, error)
		Approve(ctx context.Context, actor user.User, id string, version int, requestID string, override bool) (Achievement, error)
		Reject(ctx context.Context, actor user.User, id string, version int, reason, requestID string, override bool) (Achievement, error)
		Recommend(ctx context.Context, actor user.User, id string, version int, rec Recommendation) (Achievement, error)
		ClearRecommendation(ctx context.Context, actor user.User, id string, version int) (Achievement, error)
		Resubmit(ctx context.Context, actor user.User, id string, na NewAchievement) (Achievement, error)
		Delete(ctx context.Context, actor user.User, id string) error
		Decisions(ctx context.Context, actor user.User, id string) ([]ReviewDecision, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
		conf    *core.Config

		// mailSync forces decision mails to be sent inline (tests)
		mailSync bool

		// request-id dedup: an abandoned/retried transition must not be
		// applied twice (see Approve/Reject).
		mu        sync.Mutex
		seenReqs  map[string]transitionResult
		seenOrder []string
	}

	transitionResult struct {
		ach Achievement
		err error
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		mailSvc:  mailSvc,
		conf:     conf,
		seenReqs: make(map[string]transitionResult),
	}
}

func (svc *service) SaveDraft(ctx context.Context, actor user.User, na NewAchievement) (Achievement, error) {
	if !actor.Can(user.CapSubmitAchievement) {
		return Achievement{}, ErrForbidden
	}
	if core.CleanString(na.Title) == "" {
		return Achievement{}, core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field is required"})
	}
	a := svc.build(actor, na)
	a.Status = StatusDraft
	return svc.repo.CreateAchievement(ctx, a)
}

func (svc *service) Create(ctx context.Context, actor user.User, na NewAchievement) (Achievement, error) {
	if !actor.Can(user.CapSubmitAchievement) {
		return Achievement{}, ErrForbidden
	}
	a := svc.build(actor, na)
	a.Status = StatusPending
	return svc.repo.CreateAchievement(ctx, a)
}

// Submit transitions a stored draft into the review queue, applying the full
// submission validation. The draft is left untouched when validation fails.
func (svc *service) Submit(ctx context.Context, actor user.User, id string) (Achievement, error) {
	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !a.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
		return Achievement{}, ErrForbidden
	}
	if !CanTransition(a.Status, ActionSubmit) {
		return Achievement{}, ErrInvalidState
	}
	if fieldErrs := submissionProblems(a); len(fieldErrs) > 0 {
		return Achievement{}, core.NewValidationError(nil, fieldErrs...)
	}
	return svc.repo.CompareAndSetStatus(ctx, a.ID, a.Version, StatusPending, "", nil)
}

func (svc *service) build(actor user.User, na NewAchievement) Achievement {
	now := time.Now().UTC()
	price, _ := ParsePrice(na.Price)
	participants := na.Participants
	if len(participants) == 0 {
		participants = []string{actor.Name}
	}
	return Achievement{
		OwnerID:      actor.ID,
		OwnerName:    actor.Name,
		Title:        na.Title,
		Category:     na.Category,
		Level:        na.Level,
		Description:  na.Description,
		Participants: participants,
		Instructor:   na.Instructor,
		Price:        price,
		Keywords:     na.Keywords,
		Images:       na.Images,
		Videos:       na.Videos,
		Files:        na.Files,
		CompletedOn:  na.CompletedOn,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Achievement, error) {
	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if a.Status != StatusApproved && !a.IsOwnedBy(actor.ID) && !actor.Can(user.CapReviewAchievement) {
		// hide unpublished achievements from anyone without a stake in them
		return Achievement{}, ErrNotFound
	}
	return a, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Achievement, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if !actor.Can(user.CapReviewAchievement) {
		if filter.OwnerID != "" && filter.OwnerID == actor.ID {
			// owners see all of their own submissions
		} else {
			filter.Status = StatusApproved
			filter.OwnerID = ""
		}
	}
	return svc.repo.QueryAchievements(ctx, filter)
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, ua UpdateAchievement) (Achievement, error) {
	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	switch {
	case actor.IsAdmin(): // admin may edit any field in any state
	case a.IsOwnedBy(actor.ID):
		// owners may only edit before approval
		if a.Status != StatusDraft && a.Status != StatusPending {
			return Achievement{}, ErrInvalidState
		}
	default:
		return Achievement{}, ErrForbidden
	}

	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Category != "" {
		a.Category = ua.Category
	}
	if ua.Level != "" {
		a.Level = ua.Level
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.Participants != nil {
		a.Participants = ua.Participants
	}
	if ua.Instructor != nil {
		a.Instructor = *ua.Instructor
	}
	if ua.Price != "" {
		price, ok := ParsePrice(ua.Price)
		if !ok {
			return Achievement{}, core.NewValidationError(nil, core.FieldError{Field: "price", Error: "invalid price descriptor"})
		}
		a.Price = price
	}
	if ua.Keywords != nil {
		a.Keywords = ua.Keywords
	}
	if ua.Images != nil {
		a.Images = ua.Images
	}
	if ua.Videos != nil {
		a.Videos = ua.Videos
	}
	if ua.Files != nil {
		a.Files = ua.Files
	}
	if !ua.CompletedOn.IsZero() {
		a.CompletedOn = ua.CompletedOn
	}
	a.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateAchievement(ctx, a)
}

func (svc *service) Approve(ctx context.Context, actor user.User, id string, version int, requestID string, override bool) (Achievement, error) {
	if !actor.Can(user.CapReviewAchievement) {
		return Achievement{}, ErrForbidden
	}
	if res, seen := svc.seenRequest(requestID); seen {
		return res.ach, res.err
	}

	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if a.Status == StatusApproved {
		// idempotent: record, timestamps and decision log all unchanged
		svc.recordRequest(requestID, a, nil)
		return a, nil
	}
	if !CanTransition(a.Status, ActionApprove) && !(override && actor.IsAdmin()) {
		svc.recordRequest(requestID, Achievement{}, ErrInvalidState)
		return Achievement{}, ErrInvalidState
	}

	a, err = svc.repo.CompareAndSetStatus(ctx, id, version, StatusApproved, "", &ReviewDecision{
		AchievementID: id,
		ReviewerID:    actor.ID,
		ReviewerName:  actor.Name,
		Outcome:       StatusApproved,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		svc.recordRequest(requestID, Achievement{}, err)
		return Achievement{}, err
	}
	svc.recordRequest(requestID, a, nil)
	svc.notifyOwner(a)
	return a, nil
}

func (svc *service) Reject(ctx context.Context, actor user.User, id string, version int, reason, requestID string, override bool) (Achievement, error) {
	if !actor.Can(user.CapReviewAchievement) {
		return Achievement{}, ErrForbidden
	}
	if res, seen := svc.seenRequest(requestID); seen {
		return res.ach, res.err
	}
	reason = core.CleanString(reason)
	if len(reason) < RejectReasonMinLen {
		return Achievement{}, core.NewValidationError(errReasonRequired,
			core.FieldError{Field: "reason", Error: fmt.Sprintf("rejection reason must contain at least %d characters", RejectReasonMinLen)})
	}

	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !CanTransition(a.Status, ActionReject) && !(override && actor.IsAdmin()) {
		svc.recordRequest(requestID, Achievement{}, ErrInvalidState)
		return Achievement{}, ErrInvalidState
	}

	a, err = svc.repo.CompareAndSetStatus(ctx, id, version, StatusRejected, reason, &ReviewDecision{
		AchievementID: id,
		ReviewerID:    actor.ID,
		ReviewerName:  actor.Name,
		Outcome:       StatusRejected,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		svc.recordRequest(requestID, Achievement{}, err)
		return Achievement{}, err
	}
	svc.recordRequest(requestID, a, nil)
	svc.notifyOwner(a)
	return a, nil
}

func (svc *service) Recommend(ctx context.Context, actor user.User, id string, version int, rec Recommendation) (Achievement, error) {
	if !actor.Can(user.CapRecommendAchievement) {
		return Achievement{}, ErrForbidden
	}
	if rec.Level < 1 || rec.Level > 3 {
		return Achievement{}, core.NewValidationError(nil, core.FieldError{Field: "level", Error: "recommendation level must be between 1 and 3"})
	}

	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !CanTransition(a.Status, ActionRecommend) {
		return Achievement{}, ErrInvalidState
	}
	return svc.repo.CompareAndSetRecommendation(ctx, id, version, &rec)
}

func (svc *service) ClearRecommendation(ctx context.Context, actor user.User, id string, version int) (Achievement, error) {
	if !actor.Can(user.CapRecommendAchievement) {
		return Achievement{}, ErrForbidden
	}
	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !CanTransition(a.Status, ActionRecommend) {
		return Achievement{}, ErrInvalidState
	}
	return svc.repo.CompareAndSetRecommendation(ctx, id, version, nil)
}

// Resubmit creates a new pending submission from a terminal one; the terminal
// record itself is never mutated.
func (svc *service) Resubmit(ctx context.Context, actor user.User, id string, na NewAchievement) (Achievement, error) {
	orig, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !orig.IsOwnedBy(actor.ID) {
		return Achievement{}, ErrForbidden
	}
	if !CanTransition(orig.Status, ActionResubmit) {
		return Achievement{}, ErrInvalidState
	}
	a := svc.build(actor, na)
	a.Status = StatusPending
	a.ResubmissionOf = orig.ID
	return svc.repo.CreateAchievement(ctx, a)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	a, err := svc.repo.GetAchievementByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case actor.IsAdmin(): // admin may delete in any state
	case a.IsOwnedBy(actor.ID) && (a.Status == StatusDraft || a.Status == StatusPending):
	default:
		return ErrForbidden
	}
	return svc.repo.DeleteAchievementsByID(ctx, id)
}

func (svc *service) Decisions(ctx context.Context, actor user.User, id string) ([]ReviewDecision, error) {
	if !actor.Can(user.CapReviewAchievement) {
		return nil, ErrForbidden
	}
	if _, err := svc.repo.GetAchievementByID(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.QueryDecisionsByAchievementID(ctx, id)
}

// submissionProblems reports every field of a stored draft that still falls
// short of the submission contract.
func submissionProblems(a Achievement) []core.FieldError {
	var errs []core.FieldError
	if n := len(core.CleanString(a.Title)); n < 5 || n > 100 {
		errs = append(errs, core.FieldError{Field: "title", Error: "title must contain between 5 and 100 characters"})
	}
	if !a.Category.IsValid() {
		errs = append(errs, core.FieldError{Field: "category", Error: "invalid achievement category"})
	}
	if !a.Level.IsValid() {
		errs = append(errs, core.FieldError{Field: "level", Error: "invalid achievement level"})
	}
	if n := len(core.CleanString(a.Description)); n < 30 || n > 2000 {
		errs = append(errs, core.FieldError{Field: "description", Error: "description must contain between 30 and 2000 characters"})
	}
	if a.Price.Raw == "" {
		errs = append(errs, core.FieldError{Field: "price", Error: "this field is required"})
	}
	if len(a.Keywords) == 0 {
		errs = append(errs, core.FieldError{Field: "keywords", Error: "at least one keyword is required"})
	}
	if len(a.Images) == 0 {
		errs = append(errs, core.FieldError{Field: "images", Error: "at least one image is required"})
	}
	if a.CompletedOn.IsZero() {
		errs = append(errs, core.FieldError{Field: "completed_on", Error: "this field is required"})
	}
	return errs
}

// request-id dedup

func (svc *service) seenRequest(requestID string) (transitionResult, bool) {
	if requestID == "" {
		return transitionResult{}, false
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	res, ok := svc.seenReqs[requestID]
	return res, ok
}

func (svc *service) recordRequest(requestID string, a Achievement, err error) {
	if requestID == "" {
		return
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, ok := svc.seenReqs[requestID]; ok {
		return
	}
	svc.seenReqs[requestID] = transitionResult{ach: a, err: err}
	svc.seenOrder = append(svc.seenOrder, requestID)
	if len(svc.seenOrder) > maxSeenRequests {
		oldest := svc.seenOrder[0]
		svc.seenOrder = svc.seenOrder[1:]
		delete(svc.seenReqs, oldest)
	}
}

func (svc *service) notifyOwner(a Achievement) {
	if svc.mailSync {
		svc.sendDecisionMail(a)
		return
	}
	go svc.sendDecisionMail(a)
}

func (svc *service) sendDecisionMail(a Achievement) {
	usr, err := svc.usrSvc.GetByID(context.Background(), a.OwnerID)
	if err != nil || usr.Email == "" {
		return
	}
	subject := "Achievement Approved"
	if a.Status == StatusRejected {
		subject = "Achievement Rejected"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      subject,
		TemplateName: "achievement-decision",
		TemplateData: struct {
			User        user.User
			Achievement Achievement
		}{usr, a},
	})
}
