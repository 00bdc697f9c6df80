package ui

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"placementdash/app"
	"placementdash/domain/placement"
	"placementdash/internal/config"
	"placementdash/internal/errors"
	"placementdash/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDashboardAPI struct {
	mock.Mock
}

func (m *mockDashboardAPI) Dashboard(ctx context.Context, email string) (*app.Dashboard, error) {
	args := m.Called(ctx, email)
	d, _ := args.Get(0).(*app.Dashboard)
	return d, args.Error(1)
}

func (m *mockDashboardAPI) Summary(ctx context.Context, email string, f placement.Filter) (*app.DashboardSummary, error) {
	args := m.Called(ctx, email, f)
	s, _ := args.Get(0).(*app.DashboardSummary)
	return s, args.Error(1)
}

func (m *mockDashboardAPI) Student(ctx context.Context, email string) (*placement.StudentSummary, error) {
	args := m.Called(ctx, email)
	s, _ := args.Get(0).(*placement.StudentSummary)
	return s, args.Error(1)
}

func (m *mockDashboardAPI) Applications(ctx context.Context, userID string) ([]placement.ApplicationProjection, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).([]placement.ApplicationProjection)
	return a, args.Error(1)
}

func do(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func newTestServer(api DashboardAPI) *Server {
	return NewServer(api, ServerOptions{GinMode: gin.TestMode, ServiceAccount: "dash@proj.iam.gserviceaccount.com"})
}

func TestHealth(t *testing.T) {
	w, body := do(t, newTestServer(&mockDashboardAPI{}), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestDashboardOK(t *testing.T) {
	api := &mockDashboardAPI{}
	api.On("Dashboard", mock.Anything, "a@x.io").Return(&app.Dashboard{
		Student:      placement.StudentProjection{UserID: "u1", Email: "a@x.io"},
		Applications: []placement.ApplicationProjection{},
	}, nil)

	w, body := do(t, newTestServer(api), "/api/dashboard?email=a@x.io")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["student"].(map[string]interface{})["userId"])
	assert.Equal(t, []interface{}{}, body["applications"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDashboardNotFound(t *testing.T) {
	api := &mockDashboardAPI{}
	api.On("Dashboard", mock.Anything, "x@y.z").Return(nil, placement.ErrStudentNotFound)

	w, body := do(t, newTestServer(api), "/api/dashboard?email=x@y.z")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student not found", body["error"])
	assert.Equal(t, "STUDENT_NOT_FOUND", body["code"])
}

func TestDashboardUpstreamFailureIncludesHint(t *testing.T) {
	api := &mockDashboardAPI{}
	upstream := errors.DataSourceError("student master", stderrors.New("googleapi: Error 403: The caller does not have permission"))
	api.On("Dashboard", mock.Anything, "a@x.io").Return(nil, upstream)

	w, body := do(t, newTestServer(api), "/api/dashboard?email=a@x.io")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch dashboard data", body["error"])
	msg := body["message"].(string)
	assert.Contains(t, msg, "The caller does not have permission")
	assert.Contains(t, msg, "Share both spreadsheets with your service account email dash@proj.iam.gserviceaccount.com (Viewer).")
}

func TestStudentEndpoint(t *testing.T) {
	api := &mockDashboardAPI{}
	api.On("Student", mock.Anything, "a@x.io").Return(&placement.StudentSummary{UserID: "u1", Raw: map[string]string{"userid": "u1"}}, nil)
	api.On("Student", mock.Anything, "").Return(nil, errors.ValidationError("Email is required"))
	api.On("Student", mock.Anything, "boom@x.io").Return(nil, errors.DataSourceError("student master", stderrors.New("Unable to parse range: Sheet1")))
	s := newTestServer(api)

	w, body := do(t, s, "/api/student?email=a@x.io")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["raw"].(map[string]interface{})["userid"])

	w, body = do(t, s, "/api/student")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["error"])

	w, body = do(t, s, "/api/student?email=boom@x.io")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch student data", body["error"])
	assert.Contains(t, body["message"], "Check that STUDENT_SHEET_RANGE and APPLICATIONS_SHEET_RANGE match your tab names")
}

func TestApplicationsEndpoint(t *testing.T) {
	api := &mockDashboardAPI{}
	api.On("Applications", mock.Anything, "u1").Return([]placement.ApplicationProjection{{UserID: "u1", Company: "Acme"}}, nil)
	api.On("Applications", mock.Anything, "").Return(nil, errors.ValidationError("UserId is required"))
	s := newTestServer(api)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications?userId=u1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var apps []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "Acme", apps[0]["company"])

	w2, body := do(t, s, "/api/applications")
	assert.Equal(t, http.StatusBadRequest, w2.Code)
	assert.Equal(t, "UserId is required", body["error"])
}

func TestDashboardSummaryFilter(t *testing.T) {
	api := &mockDashboardAPI{}
	api.On("Summary", mock.Anything, "a@x.io", mock.MatchedBy(func(f placement.Filter) bool {
		return f.Stage == "Rejected" && f.From != nil && f.From.Format(dateParam) == "2024-01-01" && f.To == nil
	})).Return(&app.DashboardSummary{Summary: placement.Summary{Total: 3, Filtered: 1}}, nil)
	s := newTestServer(api)

	w, body := do(t, s, "/api/dashboard/summary?email=a@x.io&from=2024-01-01&stage=Rejected")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(1), body["filtered"])

	w, body = do(t, s, "/api/dashboard/summary?email=a@x.io&to=01/02/2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid to date, expected YYYY-MM-DD", body["error"])

	w, _ = do(t, s, "/api/dashboard/summary?email=a@x.io&from=2024-02-01&to=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	api.AssertNumberOfCalls(t, "Summary", 1)
}

func TestDashboardSummaryMissingEmailWinsOverBadDate(t *testing.T) {
	api := &mockDashboardAPI{}
	s := newTestServer(api)

	w, body := do(t, s, "/api/dashboard/summary?from=not-a-date")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["error"])

	w, body = do(t, s, "/api/dashboard/summary?email=%20&to=2024-13-40")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["error"])
	api.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidationMessageUnwrapsAppError(t *testing.T) {
	err := fmt.Errorf("summary: %w", errors.ValidationError("Invalid from date, expected YYYY-MM-DD"))
	assert.Equal(t, "Invalid from date, expected YYYY-MM-DD", validationMessage(err))
	assert.Equal(t, "plain", validationMessage(stderrors.New("plain")))
}

func TestDashboardMissingEmailSkipsUpstream(t *testing.T) {
	var calls int32
	source := ports.RowSourceFunc(func(ctx context.Context, ds ports.Dataset) ([][]string, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	svc := app.NewDashboardService(source, config.SheetsConfig{}, 0, nil)

	w, body := do(t, newTestServer(svc), "/api/dashboard?email=%20%20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", body["error"])
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestDashboardEndToEnd(t *testing.T) {
	source := ports.RowSourceFunc(func(ctx context.Context, ds ports.Dataset) ([][]string, error) {
		if ds.Name == "applications" {
			return [][]string{{"User_ID", "Company"}, {"u9", "Other"}}, nil
		}
		return [][]string{{"E-mail", "UserId", "Name"}, {"Lee@X.io", "u1", "Lee"}}, nil
	})
	svc := app.NewDashboardService(source, config.SheetsConfig{
		Student:      config.DatasetConfig{Name: "student master"},
		Applications: config.DatasetConfig{Name: "applications"},
	}, time.Second, nil)

	w := httptest.NewRecorder()
	newTestServer(svc).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard?email=lee@x.io", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "applications")))
}

func mustField(t *testing.T, raw []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}
