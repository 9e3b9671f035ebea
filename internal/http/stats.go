package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database/stats"
)

// StatsController exposes the read-only analytics endpoints. All
// aggregation happens database-side; these handlers only shape the output.
type StatsController struct {
	stats *stats.Repository
}

func NewStatsController(statsRepo *stats.Repository) *StatsController {
	return &StatsController{stats: statsRepo}
}

func (controller *StatsController) Dashboard(c *gin.Context) {
	summary, err := controller.stats.Dashboard()
	if err != nil {
		respondInternalError(c, err, "dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// BooksPerYear returns the count of books finished in a given year when the
// year query parameter is present, or the full per-year history otherwise.
func (controller *StatsController) BooksPerYear(c *gin.Context) {
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondValidationError(c, "invalid year", nil)
			return
		}
		count, err := controller.stats.FinishedInYear(year)
		if err != nil {
			respondInternalError(c, err, "books per year")
			return
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "count": count})
		return
	}

	history, err := controller.stats.YearlyHistory()
	if err != nil {
		respondInternalError(c, err, "yearly history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (controller *StatsController) GenrePopularity(c *gin.Context) {
	popularity, err := controller.stats.GenrePopularity()
	if err != nil {
		respondInternalError(c, err, "genre popularity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": popularity})
}

func (controller *StatsController) MoodStatistics(c *gin.Context) {
	moods, err := controller.stats.MoodStatistics()
	if err != nil {
		respondInternalError(c, err, "mood statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": moods})
}
