package app

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"placementdash/domain/placement"
	"placementdash/internal/config"
	"placementdash/internal/errors"
	"placementdash/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testDatasets = config.SheetsConfig{
	Student:      config.DatasetConfig{Name: "student master"},
	Applications: config.DatasetConfig{Name: "applications"},
}

var studentRows = [][]string{
	{"Email", "User ID", "Name", "Resume Sent", "Shortlisted"},
	{"Asha@Example.com", "u1", "Asha", "10", "4"},
	{"ravi@example.com", "u2", "Ravi", "", ""},
}

var applicationRows = [][]string{
	{"UserID", "Company", "Stage", "Rejection Reason", "Application Date", "Resume Score"},
	{"u1", "Acme", "Rejected", "Low score", "2024-01-10", "60"},
	{"u2", "Globex", "Applied", "", "2024-01-11", ""},
	{" U1 ", "Initech", "Interview", "", "2024-02-01", "80"},
}

// fakeSource serves fixed rows per dataset name and counts calls.
type fakeSource struct {
	rows  map[string][][]string
	errs  map[string]error
	calls int32
}

func (f *fakeSource) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	atomic.AddInt32(&f.calls, 1)
	if err := f.errs[ds.Name]; err != nil {
		return nil, err
	}
	return f.rows[ds.Name], nil
}

func newFake() *fakeSource {
	return &fakeSource{rows: map[string][][]string{
		"student master": studentRows,
		"applications":   applicationRows,
	}}
}

func TestDashboard(t *testing.T) {
	svc := NewDashboardService(newFake(), testDatasets, time.Second, nil)

	d, err := svc.Dashboard(context.Background(), "  asha@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", d.Student.UserID)
	assert.Equal(t, "Asha", d.Student.Name)
	require.Len(t, d.Applications, 2)
	assert.Equal(t, "Acme", d.Applications[0].Company)
	assert.Equal(t, "Initech", d.Applications[1].Company)
	assert.Nil(t, d.Applications[0].Raw)
}

func TestDashboardNoApplications(t *testing.T) {
	fake := newFake()
	fake.rows["applications"] = [][]string{{"userid", "company"}}
	svc := NewDashboardService(fake, testDatasets, 0, nil)

	d, err := svc.Dashboard(context.Background(), "ravi@example.com")
	require.NoError(t, err)
	assert.NotNil(t, d.Applications)
	assert.Empty(t, d.Applications)
}

func TestDashboardValidation(t *testing.T) {
	fake := newFake()
	svc := NewDashboardService(fake, testDatasets, 0, nil)

	_, err := svc.Dashboard(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.Equal(t, "Email is required", err.Error())
	assert.Zero(t, atomic.LoadInt32(&fake.calls))
}

func TestDashboardNotFound(t *testing.T) {
	svc := NewDashboardService(newFake(), testDatasets, 0, nil)

	_, err := svc.Dashboard(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStudentNotFound, errors.GetCode(err))
	assert.ErrorIs(t, err, placement.ErrStudentNotFound)
}

func TestDashboardFailsFast(t *testing.T) {
	upstream := stderrors.New("applications fetch failed: 403 permission denied")
	var studentCancelled atomic.Bool

	source := ports.RowSourceFunc(func(ctx context.Context, ds ports.Dataset) ([][]string, error) {
		if ds.Name == "applications" {
			return nil, upstream
		}
		<-ctx.Done()
		studentCancelled.Store(true)
		return nil, ctx.Err()
	})
	svc := NewDashboardService(source, testDatasets, 5*time.Second, nil)

	start := time.Now()
	_, err := svc.Dashboard(context.Background(), "asha@example.com")
	assert.ErrorIs(t, err, upstream)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, studentCancelled.Load())
}

func TestDashboardFetchTimeout(t *testing.T) {
	source := ports.RowSourceFunc(func(ctx context.Context, ds ports.Dataset) ([][]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := NewDashboardService(source, testDatasets, 20*time.Millisecond, nil)

	_, err := svc.Dashboard(context.Background(), "asha@example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStudent(t *testing.T) {
	fake := newFake()
	fake.errs = map[string]error{"applications": stderrors.New("must not be read")}
	svc := NewDashboardService(fake, testDatasets, 0, nil)

	s, err := svc.Student(context.Background(), "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "Asha", s.Raw["name"])

	_, err = svc.Student(context.Background(), "")
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = svc.Student(context.Background(), "x@y.z")
	assert.Equal(t, errors.CodeStudentNotFound, errors.GetCode(err))
}

func TestApplications(t *testing.T) {
	fake := newFake()
	fake.errs = map[string]error{"student master": stderrors.New("must not be read")}
	svc := NewDashboardService(fake, testDatasets, 0, nil)

	apps, err := svc.Applications(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Acme", apps[0].Raw["company"])

	apps, err = svc.Applications(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, apps)

	_, err = svc.Applications(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, "UserId is required", err.Error())
}

func TestSummary(t *testing.T) {
	svc := NewDashboardService(newFake(), testDatasets, 0, nil)

	s, err := svc.Summary(context.Background(), "asha@example.com", placement.Filter{Stage: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Filtered)
	assert.Equal(t, []string{"Interview", "Rejected"}, s.Stages)
	require.Len(t, s.Rejections, 1)
	assert.Equal(t, "Low score", s.Rejections[0].Reason)
	require.NotNil(t, s.Conversion.ResumeToShortlistPct)
	assert.InDelta(t, 40.0, *s.Conversion.ResumeToShortlistPct, 0.001)
}
