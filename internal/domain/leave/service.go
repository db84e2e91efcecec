package leave

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/platform/apperr"
	"github.com/dently/clinic/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ErrOverlapping builds the conflict returned when a submission intersects
// an existing active request.
func ErrOverlapping(existing *Request) *apperr.Error {
	return apperr.ConflictWith("an active leave request already covers part of this date range", map[string]interface{}{
		"reason":              "OVERLAPPING_REQUEST",
		"conflicting_request": existing,
	})
}

// Submit validates the request and stores it as PENDING. A user can hold
// at most one active request per date range; the repository re-checks the
// guard under serializable isolation, so a clean pre-check here can still
// come back as a conflict from Submit.
func (s *Service) Submit(ctx context.Context, r *Request) error {
	if err := r.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.FindActiveOverlapping(ctx, r.UserID, r.StartDate, r.EndDate)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrOverlapping(existing)
	}

	r.Status = StatusPending
	r.TotalDays = r.ComputeTotalDays()
	return s.repo.Submit(ctx, r)
}

// ReviewAction is a manager's decision on a pending request.
type ReviewAction string

const (
	ActionApprove            ReviewAction = "APPROVE"
	ActionDeny               ReviewAction = "DENY"
	ActionProposeAlternative ReviewAction = "PROPOSE_ALTERNATIVE"
)

type ReviewInput struct {
	Action               ReviewAction `json:"action"`
	Comments             string       `json:"comments"`
	AlternativeStartDate *time.Time   `json:"alternative_start_date,omitempty"`
	AlternativeEndDate   *time.Time   `json:"alternative_end_date,omitempty"`
}

// Review applies a manager decision to a PENDING request. The actor needs
// manager permissions, with one exception: a user may approve their own
// PERSONAL request when the review comment is exactly AutoApproveComment.
// That bypass is what personal calendar blocking rides on.
func (s *Service) Review(ctx context.Context, requestID, actorID uuid.UUID, actorRole string, in ReviewInput) (*Request, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, apperr.Conflict("request is not pending review")
	}

	if !auth.HasManagerPermissions(actorRole) && !isSelfApproval(r, actorID, in) {
		return nil, apperr.Forbidden("manager role required to review leave requests")
	}

	now := time.Now().UTC()
	r.ReviewedByID = &actorID
	r.ReviewedAt = &now
	if in.Comments != "" {
		c := in.Comments
		r.ReviewComments = &c
	}

	switch in.Action {
	case ActionApprove:
		r.Status = StatusApproved
	case ActionDeny:
		r.Status = StatusDenied
	case ActionProposeAlternative:
		if in.AlternativeStartDate == nil || in.AlternativeEndDate == nil {
			return nil, apperr.Validation("alternative_start_date", "alternative dates are required")
		}
		if dateOnly(*in.AlternativeStartDate).After(dateOnly(*in.AlternativeEndDate)) {
			return nil, apperr.Validation("alternative_start_date", "must not be after alternative_end_date")
		}
		r.Status = StatusAlternativeProposed
		r.HasAlternative = true
		r.AlternativeStartDate = in.AlternativeStartDate
		r.AlternativeEndDate = in.AlternativeEndDate
		if in.Comments != "" {
			c := in.Comments
			r.AlternativeComments = &c
		}
	default:
		return nil, apperr.Validation("action", "must be APPROVE, DENY or PROPOSE_ALTERNATIVE")
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func isSelfApproval(r *Request, actorID uuid.UUID, in ReviewInput) bool {
	return actorID == r.UserID &&
		r.Type == TypePersonal &&
		in.Comments == AutoApproveComment &&
		in.Action == ActionApprove
}

// RespondToAlternative records the requester's answer to a proposed
// alternative date range.
func (s *Service) RespondToAlternative(ctx context.Context, requestID, actorID uuid.UUID, accepted bool) (*Request, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actorID != r.UserID {
		return nil, apperr.Forbidden("only the requester may respond to an alternative")
	}
	if r.Status != StatusAlternativeProposed {
		return nil, apperr.Conflict("no alternative is awaiting a response")
	}

	now := time.Now().UTC()
	r.AlternativeAccepted = &accepted
	r.AlternativeRespondedAt = &now
	if accepted {
		r.Status = StatusAlternativeAccepted
	} else {
		r.Status = StatusAlternativeRejected
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel withdraws a request that has not reached a decision.
func (s *Service) Cancel(ctx context.Context, requestID, actorID uuid.UUID) (*Request, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actorID != r.UserID {
		return nil, apperr.Forbidden("only the requester may cancel a request")
	}
	if r.Status != StatusPending && r.Status != StatusAlternativeProposed {
		return nil, apperr.Conflict("only pending requests can be cancelled")
	}

	r.Status = StatusCancelled
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// BlockCalendar marks personal busy time by submitting a PERSONAL request
// and immediately self-approving it through the sentinel bypass. The
// resulting record blocks appointments exactly like approved leave.
func (s *Service) BlockCalendar(ctx context.Context, r *Request) (*Request, error) {
	r.Type = TypePersonal
	if err := s.Submit(ctx, r); err != nil {
		return nil, err
	}
	return s.Review(ctx, r.ID, r.UserID, "", ReviewInput{
		Action:   ActionApprove,
		Comments: AutoApproveComment,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// ListBlockingForUser returns the records that block appointments for a
// practitioner, pre-filtered for the conflict validator.
func (s *Service) ListBlockingForUser(ctx context.Context, userID uuid.UUID) ([]*Request, error) {
	return s.repo.ListBlockingForUser(ctx, userID)
}
