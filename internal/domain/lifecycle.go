package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft    Status = "Draft"
	StatusPreview  Status = "Preview"
	StatusLive     Status = "Live"
	StatusComplete Status = "Complete"
)

func (s Status) Validate() error {
	switch s {
	case StatusDraft, StatusPreview, StatusLive, StatusComplete:
		return nil
	}
	return fmt.Errorf("invalid status %q", string(s))
}

type PublishStatus string

const (
	PublishStatusIdle     PublishStatus = "Idle"
	PublishStatusReview   PublishStatus = "Review"
	PublishStatusApproved PublishStatus = "Approved"
	PublishStatusWaiting  PublishStatus = "Waiting"
)

func (p PublishStatus) Validate() error {
	switch p {
	case PublishStatusIdle, PublishStatusReview, PublishStatusApproved, PublishStatusWaiting:
		return nil
	}
	return fmt.Errorf("invalid publish status %q", string(p))
}

// StatusFlags are the derived lifecycle checks used by the UI and the API.
type StatusFlags struct {
	Archived       bool `json:"archived"`
	Draft          bool `json:"draft"`
	Preview        bool `json:"preview"`
	Live           bool `json:"live"`
	Complete       bool `json:"complete"`
	Idle           bool `json:"idle"`
	Approved       bool `json:"approved"`
	Review         bool `json:"review"`
	Waiting        bool `json:"waiting"`
	PauseRequested bool `json:"pauseRequested"`
	EndRequested   bool `json:"endRequested"`
	// Launched means the experiment is or was live.
	Launched bool `json:"launched"`
}

func GetStatus(e *Experiment) StatusFlags {
	if e == nil {
		return StatusFlags{}
	}
	next := e.nextStatus()
	return StatusFlags{
		Archived:       e.IsArchived,
		Draft:          e.Status == StatusDraft,
		Preview:        e.Status == StatusPreview,
		Live:           e.Status == StatusLive,
		Complete:       e.Status == StatusComplete,
		Idle:           e.PublishStatus == PublishStatusIdle,
		Approved:       e.PublishStatus == PublishStatusApproved,
		Review:         e.PublishStatus == PublishStatusReview,
		Waiting:        e.PublishStatus == PublishStatusWaiting,
		PauseRequested: e.Status == StatusLive && next == StatusLive && e.IsEnrollmentPausePending,
		EndRequested:   e.Status == StatusLive && next == StatusComplete,
		Launched:       e.Status == StatusLive || e.Status == StatusComplete,
	}
}

func (e *Experiment) nextStatus() Status {
	if e.StatusNext == nil {
		return ""
	}
	return *e.StatusNext
}

// ReviewFlow describes one change that needs review before it is published.
type ReviewFlow struct {
	ButtonTitle    string
	Description    string
	RequestSummary string
	ReviewSummary  string
}

var (
	LaunchFlow = ReviewFlow{
		ButtonTitle:    "Launch Experiment",
		Description:    "launch this experiment",
		RequestSummary: "Requested Launch",
		ReviewSummary:  "Review Launch Request",
	}
	PauseFlow = ReviewFlow{
		ButtonTitle:    "End Enrollment for Experiment",
		Description:    "end enrollment for this experiment",
		RequestSummary: "Requested End Enrollment",
		ReviewSummary:  "Review End Enrollment Request",
	}
	EndFlow = ReviewFlow{
		ButtonTitle:    "End Experiment",
		Description:    "end this experiment",
		RequestSummary: "Requested End",
		ReviewSummary:  "Review End Request",
	}
)

// PendingFlow returns the flow matching a pending request.
func PendingFlow(flags StatusFlags) ReviewFlow {
	switch {
	case flags.PauseRequested:
		return PauseFlow
	case flags.EndRequested:
		return EndFlow
	default:
		return LaunchFlow
	}
}

// SummaryAction is the call to action shown on the experiment summary.
// canReview selects the reviewer wording for pending requests.
func SummaryAction(flags StatusFlags, canReview bool) string {
	if flags.Review || flags.Approved || flags.Waiting {
		flow := PendingFlow(flags)
		if canReview {
			return flow.ReviewSummary
		}
		return flow.RequestSummary
	}
	if !flags.Launched && !flags.Archived {
		return "Request Launch"
	}
	return ""
}

// Editable reports whether the experiment configuration may still change.
func Editable(flags StatusFlags) bool {
	return !flags.Launched && flags.Idle && !flags.Preview && !flags.Archived
}

// Action is a lifecycle transition requested by a user.
type Action string

const (
	ActionLaunch  Action = "launch"
	ActionPause   Action = "pause"
	ActionEnd     Action = "end"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionLaunch, ActionPause, ActionEnd, ActionApprove, ActionReject:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, s)
}

// Apply runs the transition for action and returns the change log entry.
func Apply(e *Experiment, action Action, by, message string, now time.Time) (*ChangeLog, error) {
	switch action {
	case ActionLaunch:
		return RequestLaunch(e, by, now)
	case ActionPause:
		return RequestPause(e, by, now)
	case ActionEnd:
		return RequestEnd(e, by, now)
	case ActionApprove:
		return Approve(e, by, now)
	case ActionReject:
		return Reject(e, by, message, now)
	}
	return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
}

func statusPtr(s Status) *Status {
	return &s
}

// transition records the state before and after mutate as a change log entry.
func transition(e *Experiment, by, message string, now time.Time, mutate func()) *ChangeLog {
	oldStatus, oldPublish := e.Status, e.PublishStatus
	var oldNext *Status
	if e.StatusNext != nil {
		oldNext = statusPtr(*e.StatusNext)
	}

	mutate()
	e.UpdatedAt = now

	log := &ChangeLog{
		ExperimentID:     e.ID,
		ChangedOn:        now,
		ChangedBy:        by,
		OldStatus:        &oldStatus,
		OldStatusNext:    oldNext,
		OldPublishStatus: &oldPublish,
		NewStatus:        e.Status,
		NewPublishStatus: e.PublishStatus,
	}
	if e.StatusNext != nil {
		log.NewStatusNext = statusPtr(*e.StatusNext)
	}
	if message != "" {
		log.Message = &message
	}
	return log
}

func RequestLaunch(e *Experiment, by string, now time.Time) (*ChangeLog, error) {
	flags := GetStatus(e)
	if !(flags.Draft || flags.Preview) || !flags.Idle || flags.Archived {
		return nil, fmt.Errorf("%w: launch requires an idle draft", ErrInvalidTransition)
	}
	return transition(e, by, "", now, func() {
		e.StatusNext = statusPtr(StatusLive)
		e.PublishStatus = PublishStatusReview
	}), nil
}

func RequestPause(e *Experiment, by string, now time.Time) (*ChangeLog, error) {
	flags := GetStatus(e)
	if !flags.Live || !flags.Idle || e.IsEnrollmentPaused {
		return nil, fmt.Errorf("%w: end enrollment requires an idle live experiment that is still enrolling", ErrInvalidTransition)
	}
	return transition(e, by, "", now, func() {
		e.StatusNext = statusPtr(StatusLive)
		e.IsEnrollmentPausePending = true
		e.PublishStatus = PublishStatusReview
	}), nil
}

func RequestEnd(e *Experiment, by string, now time.Time) (*ChangeLog, error) {
	flags := GetStatus(e)
	if !flags.Live || !flags.Idle {
		return nil, fmt.Errorf("%w: end requires an idle live experiment", ErrInvalidTransition)
	}
	return transition(e, by, "", now, func() {
		e.StatusNext = statusPtr(StatusComplete)
		e.PublishStatus = PublishStatusReview
	}), nil
}

// Approve moves a request in review to approved. The change takes effect
// when the experiment is next published.
func Approve(e *Experiment, by string, now time.Time) (*ChangeLog, error) {
	if e.PublishStatus != PublishStatusReview {
		return nil, fmt.Errorf("%w: nothing to approve", ErrInvalidTransition)
	}
	return transition(e, by, "", now, func() {
		e.PublishStatus = PublishStatusApproved
	}), nil
}

// Reject cancels a request in review, or one waiting on the delivery
// service. Approved requests are applied by the next publish. The message is
// kept in the change log.
func Reject(e *Experiment, by, message string, now time.Time) (*ChangeLog, error) {
	flags := GetStatus(e)
	if !(flags.Review || flags.Waiting) {
		return nil, fmt.Errorf("%w: nothing to reject", ErrInvalidTransition)
	}
	return transition(e, by, message, now, func() {
		e.StatusNext = nil
		e.IsEnrollmentPausePending = false
		e.PublishStatus = PublishStatusIdle
	}), nil
}

// CompletePublish applies an approved request once its recipe is published.
func CompletePublish(e *Experiment, by string, now time.Time) (*ChangeLog, error) {
	if e.PublishStatus != PublishStatusApproved {
		return nil, fmt.Errorf("%w: no approved change to publish", ErrInvalidTransition)
	}
	return transition(e, by, "", now, func() {
		if e.StatusNext != nil {
			e.Status = *e.StatusNext
		}
		if e.IsEnrollmentPausePending {
			e.IsEnrollmentPaused = true
			e.IsEnrollmentPausePending = false
		}
		if e.Status == StatusComplete && e.EndDate == nil {
			end := now
			e.EndDate = &end
		}
		e.StatusNext = nil
		e.PublishStatus = PublishStatusIdle
	}), nil
}
