package ui

import (
	"net/http"
	"strings"
	"time"

	"placementdash/domain/placement"
	"placementdash/internal/errors"
	"placementdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

const dateParam = "2006-01-02"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStudent(c *gin.Context) {
	student, err := s.service.Student(c.Request.Context(), c.Query("email"))
	if err != nil {
		s.respondError(c, err, "Failed to fetch student data")
		return
	}
	c.JSON(http.StatusOK, student)
}

func (s *Server) handleApplications(c *gin.Context) {
	apps, err := s.service.Applications(c.Request.Context(), c.Query("userId"))
	if err != nil {
		s.respondError(c, err, "Failed to fetch applications")
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) handleDashboard(c *gin.Context) {
	dashboard, err := s.service.Dashboard(c.Request.Context(), c.Query("email"))
	if err != nil {
		s.respondError(c, err, "Failed to fetch dashboard data")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) handleDashboardSummary(c *gin.Context) {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		s.respondError(c, errors.ValidationError("Email is required"), "Failed to fetch dashboard data")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		s.respondError(c, err, "Failed to fetch dashboard data")
		return
	}

	summary, err := s.service.Summary(c.Request.Context(), email, filter)
	if err != nil {
		s.respondError(c, err, "Failed to fetch dashboard data")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func parseFilter(c *gin.Context) (placement.Filter, error) {
	f := placement.Filter{Stage: strings.TrimSpace(c.Query("stage"))}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateParam, raw)
		if err != nil {
			return f, errors.ValidationError("Invalid " + p.name + " date, expected YYYY-MM-DD")
		}
		*p.dst = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, errors.ValidationError("Invalid date range: to is before from")
	}
	return f, nil
}

// respondError maps an error to its HTTP shape. Upstream failures keep
// the underlying message plus an operator hint.
func (s *Server) respondError(c *gin.Context, err error, failure string) {
	switch {
	case errors.HasCode(err, errors.CodeValidationError):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.HasCode(err, errors.CodeStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Student not found",
			"code":  errors.CodeStudentNotFound,
		})
	default:
		msg := err.Error()
		s.logger.Error("[API] %s %s failed rid=%s: %v", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   failure,
			"message": msg + errors.Hint(msg, s.serviceAccount),
		})
	}
}

func validationMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
