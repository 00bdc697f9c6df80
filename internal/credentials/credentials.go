// Package credentials resolves the Google service account used for the
// authenticated spreadsheet source. Resolution happens once at startup; the
// resulting Handle is passed to whoever needs it.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"

	"placementdash/internal/config"
	"placementdash/internal/errors"

	"github.com/tidwall/gjson"
)

const (
	envInline = "GOOGLE_SERVICE_ACCOUNT_JSON"
	envFile   = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Handle is the resolved credential state. A configured handle with a
// non-nil Err means material was supplied but is unusable; every fetch
// that needs it reports Err.
type Handle struct {
	JSON        []byte
	Source      string
	ClientEmail string
	Err         error
	configured  bool
}

// None is the handle for a process without credentials.
func None() *Handle {
	return &Handle{}
}

// FromJSON builds a handle from inline service account JSON.
func FromJSON(raw []byte, source string) *Handle {
	h := &Handle{Source: source, configured: true}
	if !gjson.ValidBytes(raw) {
		h.Err = errors.New(errors.CodeDataSource, fmt.Sprintf("Invalid %s: must be valid JSON", source))
		return h
	}
	h.JSON = raw
	h.ClientEmail = gjson.GetBytes(raw, "client_email").String()
	return h
}

// Resolve inspects inline JSON first, then a credentials file path.
func Resolve(cfg config.CredentialsConfig) *Handle {
	if cfg.JSON != "" {
		return FromJSON([]byte(cfg.JSON), envInline)
	}
	if cfg.File != "" {
		path, err := filepath.Abs(cfg.File)
		if err != nil {
			path = cfg.File
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return &Handle{
				Source:     path,
				configured: true,
				Err:        errors.Wrapf(errors.New(errors.CodeDataSource, err.Error()), "cannot read %s", envFile),
			}
		}
		return FromJSON(raw, path)
	}
	return None()
}

// Configured reports whether credential material was supplied at all,
// usable or not.
func (h *Handle) Configured() bool {
	return h != nil && h.configured
}

// Usable reports whether the handle can authenticate.
func (h *Handle) Usable() bool {
	return h.Configured() && h.Err == nil
}
