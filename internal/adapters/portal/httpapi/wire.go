package httpapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
)

// sessionPayload accepts both the student and the admin session shapes.
type sessionPayload struct {
	ID              string     `json:"id"`
	LegacyID        string     `json:"_id"`
	SubjectName     string     `json:"subjectName"`
	SubjectCode     string     `json:"subjectCode"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	CreatedAt       *time.Time `json:"createdAt"`
	HasAttended     *bool      `json:"hasAttended"`
	IsActive        *bool      `json:"isActive"`
	AttendanceCount int        `json:"attendanceCount"`
}

func (p sessionPayload) toDomain() domain.Session {
	id := p.ID
	if id == "" {
		id = p.LegacyID
	}

	// Sessions without a reported creation instant count as created when
	// they open.
	createdAt := p.StartTime
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		createdAt = *p.CreatedAt
	}

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}

	return domain.Session{
		ID:              domain.SessionID(id),
		Subject:         domain.Subject{Name: p.SubjectName, Code: p.SubjectCode},
		StartsAt:        p.StartTime,
		EndsAt:          p.EndTime,
		CreatedAt:       createdAt,
		Attended:        domain.AttendanceFromFlag(p.HasAttended),
		Active:          active,
		AttendanceCount: p.AttendanceCount,
	}
}

type updatePayload struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"_id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	ImageURL  string          `json:"imageUrl"`
	Image     string          `json:"image"`
	AudioURL  string          `json:"audioUrl"`
	Audio     string          `json:"audio"`
	CreatedBy json.RawMessage `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (p updatePayload) toDomain() domain.Update {
	return domain.Update{
		ID:        domain.UpdateID(firstNonEmpty(p.ID, p.LegacyID)),
		Title:     p.Title,
		Body:      p.Content,
		ImageURL:  firstNonEmpty(p.ImageURL, p.Image),
		AudioURL:  firstNonEmpty(p.AudioURL, p.Audio),
		Author:    authorName(p.CreatedBy),
		CreatedAt: p.CreatedAt,
	}
}

// authorName reads createdBy as either a plain string or a user object.
func authorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return strings.TrimSpace(name)
	}

	var user struct {
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return ""
	}

	full := strings.TrimSpace(user.FirstName + " " + user.LastName)
	return firstNonEmpty(user.Name, full, user.Email)
}

// errorPayload covers the structured {"error":{"code","message"}} envelope
// and the older {"message", "error": "..."} shape.
type errorPayload struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
}

type errorDetail struct {
	Code    string
	Message string
	Legacy  string
}

func parseErrorPayload(body []byte) errorDetail {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorDetail{Legacy: strings.TrimSpace(string(body))}
	}

	detail := errorDetail{Code: payload.Code, Message: payload.Message}
	if len(payload.Error) == 0 {
		return detail
	}

	var structured struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &structured); err == nil {
		detail.Code = firstNonEmpty(structured.Code, detail.Code)
		detail.Message = firstNonEmpty(structured.Message, detail.Message)
		return detail
	}

	var legacy string
	if err := json.Unmarshal(payload.Error, &legacy); err == nil {
		detail.Legacy = legacy
	}

	return detail
}

func describeFailure(resp response) string {
	detail := parseErrorPayload(resp.body)
	message := firstNonEmpty(detail.Message, detail.Legacy, detail.Code)
	if message == "" {
		return "empty response"
	}
	return message
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
