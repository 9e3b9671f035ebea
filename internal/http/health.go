package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database"
	"github.com/vkuzmin/shelfmate/internal/entities"
)

// HealthResponse reports service readiness plus a small library snapshot,
// so an operator can tell an empty database apart from a broken one.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Database  string    `json:"database"`
	Books     int64     `json:"books"`
	CheckedAt time.Time `json:"checked_at"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Status pings the database and counts the catalog. An unreachable
// database degrades the response to 503.
func (h *HealthController) Status(c *gin.Context) {
	health := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Database:  "ok",
		CheckedAt: time.Now(),
	}

	if err := h.pingDatabase(); err != nil {
		health.Status = "unhealthy"
		health.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	if err := h.db.DB.Model(&entities.Book{}).Count(&health.Books).Error; err != nil {
		health.Status = "unhealthy"
		health.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
