package placement

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// NoReasonLabel buckets applications without a rejection reason.
const NoReasonLabel = "No reason / N/A"

// UnknownStageLabel buckets applications without a stage.
const UnknownStageLabel = "Unknown"

// Filter narrows a learner's applications. Zero values disable a bound.
type Filter struct {
	From  *time.Time
	To    *time.Time
	Stage string
}

// IsZero reports whether the filter keeps everything.
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && strings.TrimSpace(f.Stage) == ""
}

// ReasonCount is one slice of the rejection breakdown.
type ReasonCount struct {
	Reason  string  `json:"reason"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// StageCount is one bar of the placement funnel.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Conversion holds funnel ratios derived from the student's own counters.
type Conversion struct {
	ResumeToShortlistPct *float64 `json:"resumeToShortlistPct"`
	InterviewToHirePct   *float64 `json:"interviewToHirePct"`
}

// ScoreStats summarizes numeric resume scores.
type ScoreStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is the analytics view of one learner's applications.
type Summary struct {
	Total          int                     `json:"total"`
	Filtered       int                     `json:"filtered"`
	Stages         []string                `json:"stages"`
	StageCounts    []StageCount            `json:"stageCounts"`
	Rejections     []ReasonCount           `json:"rejections"`
	ActivePipeline []ApplicationProjection `json:"activePipeline"`
	Conversion     Conversion              `json:"conversion"`
	ResumeScores   *ScoreStats             `json:"resumeScores"`
}

// Summarize computes the analytics view. Stages lists every stage seen
// before filtering so a client can offer them as filter choices.
func Summarize(student StudentProjection, apps []ApplicationProjection, f Filter) Summary {
	filtered := FilterApplications(apps, f)
	return Summary{
		Total:          len(apps),
		Filtered:       len(filtered),
		Stages:         Stages(apps),
		StageCounts:    StageCounts(filtered),
		Rejections:     RejectionBreakdown(filtered),
		ActivePipeline: ActivePipeline(filtered),
		Conversion:     ConversionFor(student),
		ResumeScores:   ResumeScoreStats(filtered),
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate reads the date formats found in the applications sheet.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// FilterApplications applies f, keeping input order. The To bound covers the
// whole day. With a date bound set, undated applications are dropped.
func FilterApplications(apps []ApplicationProjection, f Filter) []ApplicationProjection {
	out := make([]ApplicationProjection, 0, len(apps))
	if f.IsZero() {
		return append(out, apps...)
	}

	stage := normalizeKey(f.Stage)
	for _, a := range apps {
		if f.From != nil || f.To != nil {
			d, ok := ParseDate(a.ApplicationDate)
			if !ok {
				continue
			}
			if f.From != nil && d.Before(*f.From) {
				continue
			}
			if f.To != nil && d.After(endOfDay(*f.To)) {
				continue
			}
		}
		if stage != "" && normalizeKey(a.Stage) != stage {
			continue
		}
		out = append(out, a)
	}
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// RejectionBreakdown counts applications per rejection reason in
// first-seen order.
func RejectionBreakdown(apps []ApplicationProjection) []ReasonCount {
	out := make([]ReasonCount, 0)
	index := make(map[string]int)
	for _, a := range apps {
		reason := strings.TrimSpace(a.RejectionReason)
		if reason == "" {
			reason = NoReasonLabel
		}
		if i, ok := index[reason]; ok {
			out[i].Count++
			continue
		}
		index[reason] = len(out)
		out = append(out, ReasonCount{Reason: reason, Count: 1})
	}
	for i := range out {
		out[i].Percent = roundTenth(float64(out[i].Count) / float64(len(apps)) * 100)
	}
	return out
}

// StageCounts counts applications per stage in first-seen order.
func StageCounts(apps []ApplicationProjection) []StageCount {
	out := make([]StageCount, 0)
	index := make(map[string]int)
	for _, a := range apps {
		stage := strings.TrimSpace(a.Stage)
		if stage == "" {
			stage = UnknownStageLabel
		}
		if i, ok := index[stage]; ok {
			out[i].Count++
			continue
		}
		index[stage] = len(out)
		out = append(out, StageCount{Stage: stage, Count: 1})
	}
	return out
}

// ActivePipeline drops rejected applications.
func ActivePipeline(apps []ApplicationProjection) []ApplicationProjection {
	out := make([]ApplicationProjection, 0, len(apps))
	for _, a := range apps {
		if normalizeKey(a.Stage) != "rejected" {
			out = append(out, a)
		}
	}
	return out
}

// Stages returns the distinct non-empty stages, sorted.
func Stages(apps []ApplicationProjection) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, a := range apps {
		s := strings.TrimSpace(a.Stage)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func ratioPct(num, den string) *float64 {
	d, ok := ParseNumber(den)
	if !ok || d <= 0 {
		return nil
	}
	n, ok := ParseNumber(num)
	if !ok {
		return nil
	}
	v := roundTenth(n / d * 100)
	return &v
}

// ConversionFor derives resume-to-shortlist and interview-to-hire ratios.
func ConversionFor(s StudentProjection) Conversion {
	return Conversion{
		ResumeToShortlistPct: ratioPct(s.Shortlisted, s.ResumeSent),
		InterviewToHirePct:   ratioPct(s.Offers, s.Interviewed),
	}
}

// ResumeScoreStats summarizes the numeric resume scores; nil when none parse.
func ResumeScoreStats(apps []ApplicationProjection) *ScoreStats {
	var scores stats.Float64Data
	for _, a := range apps {
		if v, ok := ParseNumber(a.ResumeScore); ok {
			scores = append(scores, v)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	mean, _ := scores.Mean()
	median, _ := scores.Median()
	lo, _ := scores.Min()
	hi, _ := scores.Max()
	return &ScoreStats{
		Count:  len(scores),
		Mean:   roundTenth(mean),
		Median: median,
		Min:    lo,
		Max:    hi,
	}
}
