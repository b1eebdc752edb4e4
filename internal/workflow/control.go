package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Custom ids of interactive components. In-memory sessions use
// "ot|<session id>|<action>", persisted requests use "otr|<request id>|<action>".
const (
	sessionPrefix = "ot"
	recordPrefix  = "otr"
)

const (
	ActionChoice        = "choice"
	ActionDates         = "dates"
	ActionConfirmDates  = "confirm-dates"
	ActionJustify       = "justify"
	ActionReviewConfirm = "review-confirm"
	ActionReviewEdit    = "review-edit"
	ActionReviewCancel  = "review-cancel"
	ActionForward       = "forward"
	ActionCancel        = "cancel"
	ActionResend        = "resend"
	ActionApprove       = "approve"
	ActionReject        = "reject"
)

// ControlID is a parsed custom id.
type ControlID struct {
	SessionID string
	RequestID uint
	Action    string
	// Arg is the part after ':' in actions such as "choice:banco".
	Arg string
}

// IsRecord reports whether the control belongs to a persisted request.
func (c ControlID) IsRecord() bool {
	return c.RequestID != 0
}

func SessionControlID(sessionID, action string) string {
	return sessionPrefix + "|" + sessionID + "|" + action
}

func RecordControlID(requestID uint, action string) string {
	return recordPrefix + "|" + strconv.FormatUint(uint64(requestID), 10) + "|" + action
}

// ParseControlID reports false for custom ids that do not belong to the workflow.
func ParseControlID(customID string) (ControlID, bool) {
	parts := strings.SplitN(customID, "|", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ControlID{}, false
	}

	var id ControlID
	switch parts[0] {
	case sessionPrefix:
		id.SessionID = parts[1]
	case recordPrefix:
		n, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil || n == 0 {
			return ControlID{}, false
		}
		id.RequestID = uint(n)
	default:
		return ControlID{}, false
	}

	id.Action, id.Arg, _ = strings.Cut(parts[2], ":")
	return id, true
}

func (c ControlID) String() string {
	action := c.Action
	if c.Arg != "" {
		action = fmt.Sprintf("%s:%s", c.Action, c.Arg)
	}
	if c.IsRecord() {
		return RecordControlID(c.RequestID, action)
	}
	return SessionControlID(c.SessionID, action)
}
