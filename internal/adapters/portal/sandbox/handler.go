package sandbox

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	actorKey          = "sandbox.actor"
	idempotencyHeader = "Idempotency-Key"
)

// accepted start/end layouts; the admin form posts local times without a zone
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// Handler serves the portal REST API under /api.
func (p *Portal) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), p.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", p.authenticate())

	student := api.Group("", p.requireRole(RoleStudent))
	student.GET("/student/active-sessions", p.handleStudentSessions)
	student.GET("/student/updates", p.handleListUpdates)
	student.POST("/subject-attendance/mark/:id", p.handleMark)

	admin := api.Group("/admin", p.requireRole(RoleAdmin))
	admin.GET("/subjects", p.handleListSubjects)
	admin.POST("/subjects", p.handleCreateSubject)
	admin.GET("/attendance-sessions", p.handleAdminSessions)
	admin.POST("/attendance-sessions", p.handleCreateSession)
	admin.PUT("/attendance-sessions/:id/end", p.handleEndSession)
	admin.DELETE("/attendance-sessions/:id", p.handleDeleteSession)
	admin.GET("/updates", p.handleListUpdates)
	admin.POST("/updates", p.handlePostUpdate)
	admin.DELETE("/updates/:id", p.handleDeleteUpdate)

	return router
}

func (p *Portal) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		p.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(started),
		}).Debug("sandbox request")
	}
}

func (p *Portal) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		user, ok := p.user(token)
		if token == "" || !ok {
			p.abort(c, reject(http.StatusUnauthorized, CodeUnauthorized, "missing or unknown bearer token"))
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

func (p *Portal) requireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor(c).Role != role {
			p.abort(c, reject(http.StatusForbidden, CodeForbidden, "route requires role "+string(role)))
			return
		}
		c.Next()
	}
}

func actor(c *gin.Context) User {
	value, _ := c.Get(actorKey)
	user, _ := value.(User)
	return user
}

func (p *Portal) abort(c *gin.Context, err error) {
	rejection := asRejection(err)
	if p.legacyErrors {
		body := gin.H{"message": rejection.Message}
		if rejection.Code == CodeDuplicateMark {
			body = gin.H{
				"message": "Failed to mark attendance",
				"error":   "E11000 duplicate key error collection: attendances index: session_1_student_1",
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
		return
	}

	c.AbortWithStatusJSON(rejection.Status, gin.H{
		"error": gin.H{"code": rejection.Code, "message": rejection.Message},
	})
}

func (p *Portal) handleStudentSessions(c *gin.Context) {
	c.JSON(http.StatusOK, p.studentSessions(actor(c).ID))
}

func (p *Portal) handleAdminSessions(c *gin.Context) {
	c.JSON(http.StatusOK, p.adminSessions())
}

func (p *Portal) handleListUpdates(c *gin.Context) {
	c.JSON(http.StatusOK, p.Updates())
}

func (p *Portal) handleMark(c *gin.Context) {
	if err := p.Mark(actor(c).ID, c.Param("id"), c.GetHeader(idempotencyHeader)); err != nil {
		p.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance marked successfully"})
}

func (p *Portal) handleListSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, p.Subjects())
}

type createSubjectRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

func (p *Portal) handleCreateSubject(c *gin.Context) {
	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p.abort(c, reject(http.StatusBadRequest, CodeInvalidRequest, err.Error()))
		return
	}

	subject, err := p.CreateSubject(req.Name, req.Code)
	if err != nil {
		p.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

type createSessionRequest struct {
	SubjectID string `json:"subjectId" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

func (p *Portal) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p.abort(c, reject(http.StatusBadRequest, CodeInvalidRequest, err.Error()))
		return
	}

	start, ok := parseTime(req.StartTime)
	if !ok {
		p.abort(c, reject(http.StatusBadRequest, CodeInvalidRequest, "invalid startTime"))
		return
	}
	end, ok := parseTime(req.EndTime)
	if !ok {
		p.abort(c, reject(http.StatusBadRequest, CodeInvalidRequest, "invalid endTime"))
		return
	}

	session, err := p.CreateSession(req.SubjectID, start, end)
	if err != nil {
		p.abort(c, err)
		return
	}

	p.mu.RLock()
	view := p.viewLocked(session)
	p.mu.RUnlock()

	c.JSON(http.StatusCreated, view)
}

func (p *Portal) handleEndSession(c *gin.Context) {
	if err := p.EndSession(c.Param("id")); err != nil {
		p.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (p *Portal) handleDeleteSession(c *gin.Context) {
	if err := p.DeleteSession(c.Param("id")); err != nil {
		p.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type postUpdateRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	AudioURL string `json:"audioUrl"`
}

func (p *Portal) handlePostUpdate(c *gin.Context) {
	var req postUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p.abort(c, reject(http.StatusBadRequest, CodeInvalidRequest, err.Error()))
		return
	}

	update, err := p.PostUpdate(actor(c).ID, req.Title, req.Content, req.ImageURL, req.AudioURL)
	if err != nil {
		p.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, update)
}

func (p *Portal) handleDeleteUpdate(c *gin.Context) {
	if err := p.DeleteUpdate(c.Param("id")); err != nil {
		p.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
