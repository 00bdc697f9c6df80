package placement

import (
	"strings"

	"placementdash/domain/sheet"
	"placementdash/internal/errors"
)

// ErrStudentNotFound is returned when no student record carries the email.
var ErrStudentNotFound = errors.StudentNotFound()

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StudentEmail returns the record's email under either alias.
func StudentEmail(rec sheet.Record) string {
	return rec.First(emailAliases...)
}

// UserID returns the join key of a student or application record.
func UserID(rec sheet.Record) string {
	return rec.First(userIDAliases...)
}

// FindStudentByEmail returns the first student whose email matches,
// ignoring case and surrounding whitespace.
func FindStudentByEmail(students []sheet.Record, email string) (sheet.Record, error) {
	target := normalizeKey(email)
	for _, s := range students {
		if normalizeKey(StudentEmail(s)) == target {
			return s, nil
		}
	}
	return nil, ErrStudentNotFound
}

// JoinApplications keeps, in order, the applications whose user id matches
// userID under the same normalization. No match yields an empty slice.
func JoinApplications(apps []sheet.Record, userID string) []sheet.Record {
	key := normalizeKey(userID)
	out := make([]sheet.Record, 0)
	for _, a := range apps {
		if normalizeKey(UserID(a)) == key {
			out = append(out, a)
		}
	}
	return out
}
