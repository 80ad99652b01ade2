package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/sirupsen/logrus"
)

// Error codes the portal reports in the structured error envelope.
const (
	CodeDuplicateMark     = "duplicate_mark"
	CodeSignatureRequired = "signature_required"
	CodePreconditionFail  = "precondition_failed"
	CodeSessionNotFound   = "session_not_found"
	CodeSessionClosed     = "session_closed"
)

func (c *Client) FetchActiveSessions(ctx context.Context, actor domain.Actor) ([]domain.Session, error) {
	endpoint := c.endpoint("student", "active-sessions")
	if actor.IsAdmin() {
		endpoint = c.endpoint("admin", "attendance-sessions")
	}

	var payload []sessionPayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(payload))
	for _, entry := range payload {
		sessions = append(sessions, entry.toDomain())
	}

	return sessions, nil
}

// FetchSessionsForNotification reads the same collection the dashboard
// shows; the badge counts its creation instants.
func (c *Client) FetchSessionsForNotification(ctx context.Context, actor domain.Actor) ([]domain.Session, error) {
	return c.FetchActiveSessions(ctx, actor)
}

func (c *Client) FetchUpdates(ctx context.Context, actor domain.Actor) ([]domain.Update, error) {
	endpoint := c.endpoint("student", "updates")
	if actor.IsAdmin() {
		endpoint = c.endpoint("admin", "updates")
	}

	var payload []updatePayload
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	updates := make([]domain.Update, 0, len(payload))
	for _, entry := range payload {
		updates = append(updates, entry.toDomain())
	}

	return updates, nil
}

// SubmitAttendanceMark posts an empty mark for the authenticated student.
// Every failure is returned as a *domain.MarkError.
func (c *Client) SubmitAttendanceMark(ctx context.Context, id domain.SessionID, actor domain.Actor) error {
	key := c.newKey()
	logger := c.log.WithFields(logrus.Fields{"session_id": id, "actor": actor.ID, "idempotency_key": key})

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("subject-attendance", "mark", string(id)), struct{}{}, map[string]string{
		idempotencyHeader: key,
	})
	if err != nil {
		logger.WithError(err).Debug("attendance mark transport failure")
		return domain.NewMarkError(domain.ErrTransient, "", err)
	}
	if resp.ok() {
		return nil
	}

	markErr := classifyMarkFailure(resp)
	logger.WithFields(logrus.Fields{"status": resp.status, "kind": markErr.Kind}).Debug("attendance mark rejected")

	return markErr
}

// classifyMarkFailure prefers the structured error code, then the status
// code, then the legacy message text. Anything else is transient.
func classifyMarkFailure(resp response) *domain.MarkError {
	detail := parseErrorPayload(resp.body)
	cause := fmt.Errorf("status %d: %s", resp.status, describeFailure(resp))

	switch strings.ToLower(detail.Code) {
	case CodeDuplicateMark, "already_marked":
		return domain.NewMarkError(domain.ErrDuplicateMark, detail.Message, cause)
	case CodeSignatureRequired, CodePreconditionFail, "profile_incomplete":
		return domain.NewMarkError(domain.ErrPrecondition, detail.Message, cause)
	case CodeSessionNotFound, CodeSessionClosed:
		return domain.NewMarkError(domain.ErrSessionNotFound, detail.Message, cause)
	}

	switch resp.status {
	case http.StatusConflict:
		return domain.NewMarkError(domain.ErrDuplicateMark, detail.Message, cause)
	case http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		return domain.NewMarkError(domain.ErrPrecondition, detail.Message, cause)
	case http.StatusNotFound, http.StatusGone:
		return domain.NewMarkError(domain.ErrSessionNotFound, detail.Message, cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewMarkError(domain.ErrTransient, "portal rejected credentials", fmt.Errorf("%w: %w", ErrUnauthorized, cause))
	}

	text := strings.ToLower(detail.Message + " " + detail.Legacy)
	switch {
	case strings.Contains(text, "signature"), strings.Contains(text, "profile"):
		return domain.NewMarkError(domain.ErrPrecondition, detail.Message, cause)
	case strings.Contains(text, "duplicate"), strings.Contains(text, "already marked"), strings.Contains(text, "e11000"):
		return domain.NewMarkError(domain.ErrDuplicateMark, detail.Message, cause)
	}

	return domain.NewMarkError(domain.ErrTransient, "", cause)
}
