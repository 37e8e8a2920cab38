package domain

import "time"

type ChangeLog struct {
	ID               string
	ExperimentID     string
	ChangedOn        time.Time
	ChangedBy        string
	OldStatus        *Status
	OldStatusNext    *Status
	OldPublishStatus *PublishStatus
	NewStatus        Status
	NewStatusNext    *Status
	NewPublishStatus PublishStatus
	Message          *string
}

// IsRejection reports whether the entry cancelled a pending review.
// Approved changes only leave Approved through a publish.
func (c *ChangeLog) IsRejection() bool {
	if c.OldPublishStatus == nil || c.NewPublishStatus != PublishStatusIdle {
		return false
	}
	switch *c.OldPublishStatus {
	case PublishStatusReview, PublishStatusWaiting:
		return c.NewStatus == derefStatus(c.OldStatus) && c.NewStatusNext == nil
	}
	return false
}

// RejectionDescription names the request a rejection refused,
// for example "launch this experiment". Empty when unknown.
func RejectionDescription(c *ChangeLog) string {
	switch derefStatus(c.OldStatus) {
	case StatusLive:
		if derefStatus(c.OldStatusNext) == StatusLive {
			return PauseFlow.Description
		}
		return EndFlow.Description
	case StatusDraft:
		return LaunchFlow.Description
	}
	return ""
}

func derefStatus(s *Status) Status {
	if s == nil {
		return ""
	}
	return *s
}
