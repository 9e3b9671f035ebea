package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database/sessions"
	"github.com/vkuzmin/shelfmate/internal/entities"
)

// SessionsController manages reading sessions recorded outside the
// automatic progress path (manual logging, amendments).
type SessionsController struct {
	sessions *sessions.Repository
}

func NewSessionsController(sessionRepo *sessions.Repository) *SessionsController {
	return &SessionsController{sessions: sessionRepo}
}

type createSessionRequest struct {
	BookID    uint                  `json:"book_id" binding:"required"`
	StartedAt *time.Time            `json:"started_at"`
	EndedAt   *time.Time            `json:"ended_at"`
	PagesRead int                   `json:"pages_read"`
	Mood      *entities.ReadingMood `json:"mood"`
}

type updateSessionRequest struct {
	EndedAt   *time.Time            `json:"ended_at"`
	PagesRead *int                  `json:"pages_read"`
	Mood      *entities.ReadingMood `json:"mood"`
}

func (controller *SessionsController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	session := entities.ReadingSession{
		BookID:    req.BookID,
		PagesRead: req.PagesRead,
		EndedAt:   req.EndedAt,
		Mood:      req.Mood,
	}
	if req.StartedAt != nil {
		session.StartedAt = *req.StartedAt
	} else {
		session.StartedAt = time.Now()
	}

	if err := controller.sessions.Create(&session); err != nil {
		// A not-found here means the owning book, not the session.
		if isNotFound(err) {
			respondNotFound(c, "book", CodeBookNotFound)
			return
		}
		controller.respondSessionError(c, err, "create session")
		return
	}
	respondCreated(c, ToSessionResponse(&session))
}

func (controller *SessionsController) GetSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := controller.sessions.GetByID(id)
	if err != nil {
		controller.respondSessionError(c, err, "get session")
		return
	}
	c.JSON(http.StatusOK, ToSessionResponse(session))
}

// GetBookSessions lists all sessions for one book, oldest first.
func (controller *SessionsController) GetBookSessions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := controller.sessions.GetForBook(id)
	if err != nil {
		controller.respondSessionError(c, err, "sessions for book")
		return
	}
	responses := make([]SessionResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *ToSessionResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": responses, "count": len(responses)})
}

func (controller *SessionsController) UpdateSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	session, err := controller.sessions.Update(id, sessions.UpdateFields{
		EndedAt:   req.EndedAt,
		PagesRead: req.PagesRead,
		Mood:      req.Mood,
	})
	if err != nil {
		controller.respondSessionError(c, err, "update session")
		return
	}
	c.JSON(http.StatusOK, ToSessionResponse(session))
}

func (controller *SessionsController) DeleteSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.sessions.Delete(id); err != nil {
		controller.respondSessionError(c, err, "delete session")
		return
	}
	respondSuccess(c, "session deleted")
}

func (controller *SessionsController) respondSessionError(c *gin.Context, err error, context string) {
	switch {
	case isNotFound(err):
		respondNotFound(c, "session", CodeSessionNotFound)
	case errors.Is(err, sessions.ErrNegativePages),
		errors.Is(err, sessions.ErrEndBeforeStart),
		errors.Is(err, sessions.ErrInvalidMood):
		respondValidationError(c, err.Error(), nil)
	default:
		respondInternalError(c, err, context)
	}
}
