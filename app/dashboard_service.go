package app

import (
	"context"
	"strings"
	"time"

	"placementdash/domain/placement"
	"placementdash/domain/sheet"
	"placementdash/internal"
	"placementdash/internal/config"
	"placementdash/internal/errors"
	"placementdash/ports"

	"golang.org/x/sync/errgroup"
)

// Dashboard is one learner's joined view
type Dashboard struct {
	Student      placement.StudentProjection       `json:"student"`
	Applications []placement.ApplicationProjection `json:"applications"`
}

// DashboardSummary is the analytics view served alongside the dashboard
type DashboardSummary struct {
	Student placement.StudentProjection `json:"student"`
	placement.Summary
}

// DashboardService assembles learner views from the two datasets. It holds
// no per-request state; every call re-reads its upstreams.
type DashboardService struct {
	source       ports.RowSource
	students     ports.Dataset
	applications ports.Dataset
	fetchTimeout time.Duration
	logger       *internal.Logger
}

// NewDashboardService creates a dashboard service. A zero fetchTimeout
// leaves fetches bounded only by the caller's context.
func NewDashboardService(source ports.RowSource, datasets config.SheetsConfig, fetchTimeout time.Duration, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DashboardService{
		source:       source,
		students:     datasets.Student,
		applications: datasets.Applications,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Datasets returns the student and applications datasets in that order.
func (s *DashboardService) Datasets() []ports.Dataset {
	return []ports.Dataset{s.students, s.applications}
}

// Dashboard fetches both datasets in parallel, finds the learner by email
// and joins their applications. Either fetch failing fails the whole call.
func (s *DashboardService) Dashboard(ctx context.Context, email string) (*Dashboard, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.ValidationError("Email is required")
	}

	students, apps, err := s.fetchBoth(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := placement.FindStudentByEmail(students, email)
	if err != nil {
		return nil, err
	}

	joined := placement.JoinApplications(apps, placement.UserID(rec))
	s.logger.Debug("[DashboardService] %d of %d applications joined for %s", len(joined), len(apps), placement.UserID(rec))

	return &Dashboard{
		Student:      placement.ProjectStudent(rec),
		Applications: placement.ProjectApplications(joined, false),
	}, nil
}

// Summary computes analytics over the learner's applications after f.
func (s *DashboardService) Summary(ctx context.Context, email string, f placement.Filter) (*DashboardSummary, error) {
	d, err := s.Dashboard(ctx, email)
	if err != nil {
		return nil, err
	}
	return &DashboardSummary{
		Student: d.Student,
		Summary: placement.Summarize(d.Student, d.Applications, f),
	}, nil
}

// Student reads only the student dataset.
func (s *DashboardService) Student(ctx context.Context, email string) (*placement.StudentSummary, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.ValidationError("Email is required")
	}

	students, err := s.fetch(ctx, s.students)
	if err != nil {
		return nil, err
	}
	rec, err := placement.FindStudentByEmail(students, email)
	if err != nil {
		return nil, err
	}
	summary := placement.SummarizeStudent(rec)
	return &summary, nil
}

// Applications reads only the applications dataset and keeps each source
// record alongside its projection.
func (s *DashboardService) Applications(ctx context.Context, userID string) ([]placement.ApplicationProjection, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.ValidationError("UserId is required")
	}

	apps, err := s.fetch(ctx, s.applications)
	if err != nil {
		return nil, err
	}
	return placement.ProjectApplications(placement.JoinApplications(apps, userID), true), nil
}

func (s *DashboardService) fetchBoth(ctx context.Context) (students, apps []sheet.Record, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		students, ferr = s.fetch(gctx, s.students)
		return ferr
	})
	g.Go(func() error {
		var ferr error
		apps, ferr = s.fetch(gctx, s.applications)
		return ferr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return students, apps, nil
}

func (s *DashboardService) fetch(ctx context.Context, ds ports.Dataset) ([]sheet.Record, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	startTime := time.Now()
	rows, err := s.source.FetchRows(ctx, ds)
	if err != nil {
		return nil, err
	}
	records := sheet.RowsToRecords(rows)
	s.logger.Debug("[DashboardService] %s: %d records in %s", ds.Name, len(records), time.Since(startTime))
	return records, nil
}
