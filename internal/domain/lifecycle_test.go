package domain

import (
	"errors"
	"testing"
	"time"
)

func liveExperiment() *Experiment {
	e := NewExperiment("id", "live", "Live", time.Now())
	e.Status = StatusLive
	return e
}

func TestGetStatus(t *testing.T) {
	live := StatusLive
	complete := StatusComplete

	tests := []struct {
		name string
		exp  *Experiment
		want StatusFlags
	}{
		{
			name: "draft idle",
			exp:  &Experiment{Status: StatusDraft, PublishStatus: PublishStatusIdle},
			want: StatusFlags{Draft: true, Idle: true},
		},
		{
			name: "live pause requested",
			exp: &Experiment{
				Status: StatusLive, StatusNext: &live, PublishStatus: PublishStatusReview,
				IsEnrollmentPausePending: true,
			},
			want: StatusFlags{Live: true, Review: true, PauseRequested: true, Launched: true},
		},
		{
			name: "live next live without pending pause",
			exp:  &Experiment{Status: StatusLive, StatusNext: &live, PublishStatus: PublishStatusReview},
			want: StatusFlags{Live: true, Review: true, Launched: true},
		},
		{
			name: "live end requested",
			exp:  &Experiment{Status: StatusLive, StatusNext: &complete, PublishStatus: PublishStatusWaiting},
			want: StatusFlags{Live: true, Waiting: true, EndRequested: true, Launched: true},
		},
		{
			name: "complete archived",
			exp:  &Experiment{Status: StatusComplete, PublishStatus: PublishStatusIdle, IsArchived: true},
			want: StatusFlags{Complete: true, Idle: true, Archived: true, Launched: true},
		},
		{
			name: "preview approved",
			exp:  &Experiment{Status: StatusPreview, PublishStatus: PublishStatusApproved},
			want: StatusFlags{Preview: true, Approved: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatus(tt.exp); got != tt.want {
				t.Errorf("GetStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := GetStatus(nil); got != (StatusFlags{}) {
		t.Errorf("GetStatus(nil) = %+v, want zero", got)
	}
}

func TestSummaryAction(t *testing.T) {
	tests := []struct {
		name      string
		flags     StatusFlags
		canReview bool
		want      string
	}{
		{"draft", StatusFlags{Draft: true, Idle: true}, false, "Request Launch"},
		{"launch requested", StatusFlags{Draft: true, Review: true}, false, "Requested Launch"},
		{"launch reviewer", StatusFlags{Draft: true, Review: true}, true, "Review Launch Request"},
		{"pause requested", StatusFlags{Live: true, Review: true, PauseRequested: true, Launched: true}, false, "Requested End Enrollment"},
		{"end approved reviewer", StatusFlags{Live: true, Approved: true, EndRequested: true, Launched: true}, true, "Review End Request"},
		{"live idle", StatusFlags{Live: true, Idle: true, Launched: true}, false, ""},
		{"archived draft", StatusFlags{Draft: true, Idle: true, Archived: true}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummaryAction(tt.flags, tt.canReview); got != tt.want {
				t.Errorf("SummaryAction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditable(t *testing.T) {
	tests := []struct {
		name  string
		flags StatusFlags
		want  bool
	}{
		{"idle draft", StatusFlags{Draft: true, Idle: true}, true},
		{"in review", StatusFlags{Draft: true, Review: true}, false},
		{"preview", StatusFlags{Preview: true, Idle: true}, false},
		{"launched", StatusFlags{Live: true, Idle: true, Launched: true}, false},
		{"archived", StatusFlags{Draft: true, Idle: true, Archived: true}, false},
	}
	for _, tt := range tests {
		if got := Editable(tt.flags); got != tt.want {
			t.Errorf("%s: Editable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLaunchApprovePublish(t *testing.T) {
	now := time.Now()
	e := NewExperiment("id", "exp", "Exp", now)

	log, err := RequestLaunch(e, "owner@example.com", now)
	if err != nil {
		t.Fatalf("RequestLaunch failed: %v", err)
	}
	if e.PublishStatus != PublishStatusReview || e.StatusNext == nil || *e.StatusNext != StatusLive {
		t.Errorf("unexpected state after request: %s next=%v", e.PublishStatus, e.StatusNext)
	}
	if *log.OldStatus != StatusDraft || log.OldStatusNext != nil || log.NewPublishStatus != PublishStatusReview {
		t.Errorf("unexpected change log: %+v", log)
	}

	if _, err := RequestLaunch(e, "owner@example.com", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second launch request should fail, got %v", err)
	}

	if _, err := Approve(e, "reviewer@example.com", now); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if e.PublishStatus != PublishStatusApproved {
		t.Errorf("expected Approved, got %s", e.PublishStatus)
	}

	if _, err := CompletePublish(e, "publisher", now); err != nil {
		t.Fatalf("CompletePublish failed: %v", err)
	}
	if e.Status != StatusLive || e.StatusNext != nil || e.PublishStatus != PublishStatusIdle {
		t.Errorf("expected Live/Idle, got %s/%s next=%v", e.Status, e.PublishStatus, e.StatusNext)
	}
}

func TestRequestPause_CompletesAsEnrollmentPaused(t *testing.T) {
	now := time.Now()
	e := liveExperiment()

	if _, err := RequestPause(e, "owner", now); err != nil {
		t.Fatalf("RequestPause failed: %v", err)
	}
	if !GetStatus(e).PauseRequested {
		t.Error("expected pauseRequested flag")
	}
	if _, err := Approve(e, "reviewer", now); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := CompletePublish(e, "publisher", now); err != nil {
		t.Fatalf("CompletePublish failed: %v", err)
	}
	if !e.IsEnrollmentPaused || e.IsEnrollmentPausePending {
		t.Errorf("expected paused enrollment, got paused=%v pending=%v", e.IsEnrollmentPaused, e.IsEnrollmentPausePending)
	}
	if _, err := RequestPause(e, "owner", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pausing twice should fail, got %v", err)
	}
}

func TestRequestEnd_SetsEndDate(t *testing.T) {
	now := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	e := liveExperiment()

	if _, err := RequestEnd(e, "owner", now); err != nil {
		t.Fatalf("RequestEnd failed: %v", err)
	}
	if !GetStatus(e).EndRequested {
		t.Error("expected endRequested flag")
	}
	if _, err := Approve(e, "reviewer", now); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := CompletePublish(e, "publisher", now); err != nil {
		t.Fatalf("CompletePublish failed: %v", err)
	}
	if e.Status != StatusComplete || e.EndDate == nil || !e.EndDate.Equal(now) {
		t.Errorf("expected Complete with end date, got %s end=%v", e.Status, e.EndDate)
	}
}

func TestReject(t *testing.T) {
	now := time.Now()
	e := liveExperiment()

	if _, err := Reject(e, "reviewer", "no", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reject without pending request should fail, got %v", err)
	}

	if _, err := RequestEnd(e, "owner", now); err != nil {
		t.Fatalf("RequestEnd failed: %v", err)
	}
	log, err := Reject(e, "reviewer", "not yet", now)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if e.PublishStatus != PublishStatusIdle || e.StatusNext != nil {
		t.Errorf("expected idle without next status, got %s next=%v", e.PublishStatus, e.StatusNext)
	}
	if log.Message == nil || *log.Message != "not yet" {
		t.Errorf("expected rejection message, got %v", log.Message)
	}
	if !log.IsRejection() {
		t.Error("expected entry to be a rejection")
	}
	if got := RejectionDescription(log); got != "end this experiment" {
		t.Errorf("RejectionDescription() = %q", got)
	}
}

func TestRejectionDescription(t *testing.T) {
	draft, live, complete := StatusDraft, StatusLive, StatusComplete
	preview := StatusPreview

	tests := []struct {
		name string
		log  *ChangeLog
		want string
	}{
		{"pause", &ChangeLog{OldStatus: &live, OldStatusNext: &live}, "end enrollment for this experiment"},
		{"end", &ChangeLog{OldStatus: &live, OldStatusNext: &complete}, "end this experiment"},
		{"end without next", &ChangeLog{OldStatus: &live}, "end this experiment"},
		{"launch", &ChangeLog{OldStatus: &draft, OldStatusNext: &live}, "launch this experiment"},
		{"other", &ChangeLog{OldStatus: &preview}, ""},
		{"nil status", &ChangeLog{}, ""},
	}
	for _, tt := range tests {
		if got := RejectionDescription(tt.log); got != tt.want {
			t.Errorf("%s: RejectionDescription() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	e := NewExperiment("id", "exp", "Exp", time.Now())
	if _, err := Apply(e, ActionLaunch, "owner", "", time.Now()); err != nil {
		t.Fatalf("Apply(launch) failed: %v", err)
	}
	if _, err := Apply(e, Action("explode"), "owner", "", time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown action should fail, got %v", err)
	}
	if _, err := ParseAction("pause"); err != nil {
		t.Errorf("ParseAction(pause) failed: %v", err)
	}
}

func TestCompletedPauseIsNotRejection(t *testing.T) {
	now := time.Now()
	e := liveExperiment()

	if _, err := RequestPause(e, "owner", now); err != nil {
		t.Fatalf("RequestPause failed: %v", err)
	}
	if _, err := Approve(e, "reviewer", now); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := Reject(e, "reviewer", "too late", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approved requests cannot be rejected, got %v", err)
	}

	log, err := CompletePublish(e, "publisher", now)
	if err != nil {
		t.Fatalf("CompletePublish failed: %v", err)
	}
	if log.IsRejection() {
		t.Error("a published pause must not read as a rejection")
	}
	if _, err := CompletePublish(e, "publisher", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("nothing left to publish, got %v", err)
	}
}
