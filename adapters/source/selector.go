// Package source picks, per dataset and per call, which upstream supplies
// its rows.
package source

import (
	"context"
	"fmt"

	"placementdash/internal"
	"placementdash/internal/credentials"
	"placementdash/internal/errors"
	"placementdash/ports"
)

// Strategy is the kind of upstream chosen for a dataset
type Strategy int

const (
	Unconfigured Strategy = iota
	Authenticated
	PublishedCSV
	Database
	LocalFile
)

func (s Strategy) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case PublishedCSV:
		return "published_csv"
	case Database:
		return "database"
	case LocalFile:
		return "local_file"
	default:
		return "unconfigured"
	}
}

// Options wires the concrete readers into a Selector. Any reader may be
// nil; a nil reader disables its strategy.
type Options struct {
	Credentials *credentials.Handle
	Sheets      ports.RowSource
	Published   ports.RowSource
	Database    ports.RowSource
	Files       ports.RowSource
	Logger      *internal.Logger
}

// Selector implements ports.RowSource by delegating to one reader per call
type Selector struct {
	creds     *credentials.Handle
	sheets    ports.RowSource
	published ports.RowSource
	database  ports.RowSource
	files     ports.RowSource
	logger    *internal.Logger
}

// NewSelector creates a selector over the given readers
func NewSelector(opts Options) *Selector {
	creds := opts.Credentials
	if creds == nil {
		creds = credentials.None()
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Selector{
		creds:     creds,
		sheets:    opts.Sheets,
		published: opts.Published,
		database:  opts.Database,
		files:     opts.Files,
		logger:    logger,
	}
}

var _ ports.RowSource = (*Selector)(nil)

// Resolve reports the strategy FetchRows would use for ds. Configured
// credentials win even when they are unusable, so the credential error is
// what the caller sees.
func (s *Selector) Resolve(ds ports.Dataset) Strategy {
	switch {
	case s.creds.Configured() && s.sheets != nil:
		return Authenticated
	case ds.PublishedURL != "" && s.published != nil:
		return PublishedCSV
	case ds.Table != "" && s.database != nil:
		return Database
	case ds.File != "" && s.files != nil:
		return LocalFile
	}
	return Unconfigured
}

// FetchRows reads ds from the resolved upstream. Every failure comes back
// as a DATA_SOURCE_ERROR naming the dataset.
func (s *Selector) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	strategy := s.Resolve(ds)
	s.logger.Trace("[Selector] %s via %s", ds.Name, strategy)

	var reader ports.RowSource
	switch strategy {
	case Authenticated:
		reader = s.sheets
	case PublishedCSV:
		reader = s.published
	case Database:
		reader = s.database
	case LocalFile:
		reader = s.files
	default:
		err := errors.ConfigInvalid(fmt.Sprintf("no data source available for dataset %s", ds.Name))
		return nil, errors.DataSourceError(ds.Name, err)
	}

	rows, err := reader.FetchRows(ctx, ds)
	if err != nil {
		s.logger.Warn("[Selector] %s fetch via %s failed: %v", ds.Name, strategy, err)
		return nil, errors.DataSourceError(ds.Name, err)
	}
	return rows, nil
}

// ServiceAccount returns the client email of the configured credentials,
// or "" when there is none.
func (s *Selector) ServiceAccount() string {
	return s.creds.ClientEmail
}

// Choice pairs a dataset with the strategy currently serving it
type Choice struct {
	Dataset  string `json:"dataset"`
	Strategy string `json:"strategy"`
}

// Describe resolves each dataset without fetching.
func (s *Selector) Describe(datasets ...ports.Dataset) []Choice {
	out := make([]Choice, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, Choice{Dataset: ds.Name, Strategy: s.Resolve(ds).String()})
	}
	return out
}
