package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/classence-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Codes match the structured error envelope understood by the REST client.
const (
	CodeDuplicateMark     = "duplicate_mark"
	CodeSignatureRequired = "signature_required"
	CodeSessionNotFound   = "session_not_found"
	CodeSessionClosed     = "session_closed"
	CodeNotFound          = "not_found"
	CodeInvalidRequest    = "invalid_request"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
)

// Rejection is a request the portal refuses, carrying the HTTP status it is
// served with.
type Rejection struct {
	Status  int
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func reject(status int, code, message string) *Rejection {
	return &Rejection{Status: status, Code: code, Message: message}
}

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           string
	Role         Role
	HasSignature bool
}

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Session struct {
	ID        string
	SubjectID string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
	IsActive  bool
}

type Update struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type mark struct {
	at  time.Time
	key string
}

// Portal is an in-memory stand-in for the attendance portal. It serves the
// same REST surface the client consumes.
type Portal struct {
	clock        ports.Clock
	log          logrus.FieldLogger
	newID        func() string
	legacyErrors bool

	mu       sync.RWMutex
	users    map[string]User
	subjects map[string]Subject
	sessions map[string]Session
	updates  map[string]Update
	marks    map[string]map[string]mark
}

type Option func(*Portal)

func WithClock(clock ports.Clock) Option {
	return func(p *Portal) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Portal) {
		if logger != nil {
			p.log = logger
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(p *Portal) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// WithLegacyErrors serves rejections as {"message": ...} with status 400,
// the way older portal deployments do.
func WithLegacyErrors() Option {
	return func(p *Portal) {
		p.legacyErrors = true
	}
}

func New(opts ...Option) *Portal {
	p := &Portal{
		clock:    ports.SystemClock{},
		log:      logrus.StandardLogger(),
		newID:    uuid.NewString,
		users:    map[string]User{},
		subjects: map[string]Subject{},
		sessions: map[string]Session{},
		updates:  map[string]Update{},
		marks:    map[string]map[string]mark{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithField("component", "sandbox_portal")

	return p
}

// AddStudent registers a student whose bearer token is its id.
func (p *Portal) AddStudent(id string, hasSignature bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[id] = User{ID: id, Role: RoleStudent, HasSignature: hasSignature}
}

func (p *Portal) AddAdmin(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[id] = User{ID: id, Role: RoleAdmin}
}

func (p *Portal) SetSignature(studentID string, hasSignature bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[studentID]
	if !ok || user.Role != RoleStudent {
		return reject(http.StatusNotFound, CodeNotFound, "student not found")
	}
	user.HasSignature = hasSignature
	p.users[studentID] = user

	return nil
}

func (p *Portal) user(token string) (User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	user, ok := p.users[token]
	return user, ok
}

func (p *Portal) CreateSubject(name, code string) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, reject(http.StatusBadRequest, CodeInvalidRequest, "subject name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	subject := Subject{ID: p.newID(), Name: name, Code: strings.TrimSpace(code)}
	p.subjects[subject.ID] = subject

	return subject, nil
}

func (p *Portal) Subjects() []Subject {
	p.mu.RLock()
	defer p.mu.RUnlock()

	subjects := make([]Subject, 0, len(p.subjects))
	for _, subject := range p.subjects {
		subjects = append(subjects, subject)
	}
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].Name < subjects[j].Name
	})

	return subjects
}

func (p *Portal) CreateSession(subjectID string, start, end time.Time) (Session, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return Session{}, reject(http.StatusBadRequest, CodeInvalidRequest, "start time must be before end time")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subjects[subjectID]; !ok {
		return Session{}, reject(http.StatusNotFound, CodeNotFound, "subject not found")
	}

	session := Session{
		ID:        p.newID(),
		SubjectID: subjectID,
		StartTime: start,
		EndTime:   end,
		CreatedAt: p.clock.Now(),
		IsActive:  true,
	}
	p.sessions[session.ID] = session
	p.log.WithFields(logrus.Fields{"session_id": session.ID, "subject_id": subjectID}).Info("session created")

	return session, nil
}

// EndSession closes a session early; it stays listed for admins.
func (p *Portal) EndSession(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[id]
	if !ok {
		return reject(http.StatusNotFound, CodeSessionNotFound, "session not found")
	}
	session.IsActive = false
	p.sessions[id] = session

	return nil
}

// DeleteSession removes a session together with its attendance records.
func (p *Portal) DeleteSession(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.sessions[id]; !ok {
		return reject(http.StatusNotFound, CodeSessionNotFound, "session not found")
	}
	delete(p.sessions, id)
	delete(p.marks, id)

	return nil
}

func (p *Portal) PostUpdate(author, title, content, imageURL, audioURL string) (Update, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Update{}, reject(http.StatusBadRequest, CodeInvalidRequest, "title is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	update := Update{
		ID:        p.newID(),
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
		AudioURL:  audioURL,
		CreatedBy: author,
		CreatedAt: p.clock.Now(),
	}
	p.updates[update.ID] = update

	return update, nil
}

func (p *Portal) DeleteUpdate(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.updates[id]; !ok {
		return reject(http.StatusNotFound, CodeNotFound, "update not found")
	}
	delete(p.updates, id)

	return nil
}

// Updates lists updates newest first.
func (p *Portal) Updates() []Update {
	p.mu.RLock()
	defer p.mu.RUnlock()

	updates := make([]Update, 0, len(p.updates))
	for _, update := range p.updates {
		updates = append(updates, update)
	}
	sort.Slice(updates, func(i, j int) bool {
		if updates[i].CreatedAt.Equal(updates[j].CreatedAt) {
			return updates[i].ID < updates[j].ID
		}
		return updates[i].CreatedAt.After(updates[j].CreatedAt)
	})

	return updates
}

// Mark records attendance for a student. A replay carrying the idempotency
// key of the accepted mark succeeds again without a duplicate error.
func (p *Portal) Mark(studentID, sessionID, idempotencyKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[studentID]
	if !ok || user.Role != RoleStudent {
		return reject(http.StatusForbidden, CodeForbidden, "only students can mark attendance")
	}

	session, ok := p.sessions[sessionID]
	if !ok {
		return reject(http.StatusNotFound, CodeSessionNotFound, "session not found")
	}

	now := p.clock.Now()
	if !session.IsActive || now.Before(session.StartTime) || !now.Before(session.EndTime) {
		return reject(http.StatusGone, CodeSessionClosed, "session is not open for attendance")
	}

	if existing, ok := p.marks[sessionID][studentID]; ok {
		if idempotencyKey != "" && existing.key == idempotencyKey {
			return nil
		}
		return reject(http.StatusConflict, CodeDuplicateMark, "You have already marked attendance for this session")
	}

	if !user.HasSignature {
		return reject(http.StatusUnprocessableEntity, CodeSignatureRequired, "Please add your signature to your profile before marking attendance")
	}

	if p.marks[sessionID] == nil {
		p.marks[sessionID] = map[string]mark{}
	}
	p.marks[sessionID][studentID] = mark{at: now, key: idempotencyKey}
	p.log.WithFields(logrus.Fields{"session_id": sessionID, "student_id": studentID}).Info("attendance marked")

	return nil
}

func (p *Portal) HasMarked(studentID, sessionID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.marks[sessionID][studentID]
	return ok
}

type sessionView struct {
	ID              string    `json:"id"`
	SubjectName     string    `json:"subjectName"`
	SubjectCode     string    `json:"subjectCode"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	CreatedAt       time.Time `json:"createdAt"`
	HasAttended     *bool     `json:"hasAttended,omitempty"`
	IsActive        bool      `json:"isActive"`
	AttendanceCount *int      `json:"attendanceCount,omitempty"`
}

// studentSessions lists active sessions with the student's attendance flag.
func (p *Portal) studentSessions(studentID string) []sessionView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	views := make([]sessionView, 0, len(p.sessions))
	for _, session := range p.sessions {
		if !session.IsActive {
			continue
		}
		view := p.viewLocked(session)
		_, attended := p.marks[session.ID][studentID]
		view.HasAttended = &attended
		views = append(views, view)
	}
	sortViews(views)

	return views
}

func (p *Portal) adminSessions() []sessionView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	views := make([]sessionView, 0, len(p.sessions))
	for _, session := range p.sessions {
		view := p.viewLocked(session)
		count := len(p.marks[session.ID])
		view.AttendanceCount = &count
		views = append(views, view)
	}
	sortViews(views)

	return views
}

func (p *Portal) viewLocked(session Session) sessionView {
	subject := p.subjects[session.SubjectID]
	return sessionView{
		ID:          session.ID,
		SubjectName: subject.Name,
		SubjectCode: subject.Code,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		CreatedAt:   session.CreatedAt,
		IsActive:    session.IsActive,
	}
}

func sortViews(views []sessionView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].StartTime.Equal(views[j].StartTime) {
			return views[i].ID < views[j].ID
		}
		return views[i].StartTime.Before(views[j].StartTime)
	})
}

// Seed loads a demo subject, an open session and one update so a fresh
// sandbox has something to show.
func (p *Portal) Seed(studentID, adminID string) error {
	p.AddStudent(studentID, true)
	p.AddAdmin(adminID)

	subject, err := p.CreateSubject("Materials Science", "MME 105")
	if err != nil {
		return err
	}

	now := p.clock.Now()
	if _, err := p.CreateSession(subject.ID, now.Add(-time.Minute), now.Add(15*time.Minute)); err != nil {
		return err
	}

	_, err = p.PostUpdate(adminID, "Welcome", "Attendance opens at the start of every lecture.", "", "")
	return err
}

func asRejection(err error) *Rejection {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection
	}
	return reject(http.StatusInternalServerError, "internal", err.Error())
}
