package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/lifecycle"
)

// timelineBounds is the normalized form of a domain.TimelineRequest that the
// struct-level ordering rule runs against.
type timelineBounds struct {
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	BuildingStart     *time.Time
	BuildingEnd       *time.Time
	VotingStart       *time.Time
	VotingEnd         *time.Time
}

// orderingRules lists boundary pairs that must not be inverted when both are set
var orderingRules = []struct {
	first, second string
	get           func(b timelineBounds) (*time.Time, *time.Time)
}{
	{"registration_start", "registration_end", func(b timelineBounds) (*time.Time, *time.Time) { return b.RegistrationStart, b.RegistrationEnd }},
	{"building_start", "building_end", func(b timelineBounds) (*time.Time, *time.Time) { return b.BuildingStart, b.BuildingEnd }},
	{"voting_start", "voting_end", func(b timelineBounds) (*time.Time, *time.Time) { return b.VotingStart, b.VotingEnd }},
	{"registration_end", "building_start", func(b timelineBounds) (*time.Time, *time.Time) { return b.RegistrationEnd, b.BuildingStart }},
	{"building_end", "voting_start", func(b timelineBounds) (*time.Time, *time.Time) { return b.BuildingEnd, b.VotingStart }},
}

func timelineOrdering(sl validator.StructLevel) {
	bounds := sl.Current().Interface().(timelineBounds)
	for _, rule := range orderingRules {
		first, second := rule.get(bounds)
		if first != nil && second != nil && first.After(*second) {
			sl.ReportError(first, rule.first, rule.first, "not_after", rule.second)
		}
	}
}

// newTimelineValidator returns a validator carrying the timeline ordering rule
func newTimelineValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(timelineOrdering, timelineBounds{})
	return v
}

// normalizeTimeline parses every boundary of req and checks their ordering.
// A value that is present but cannot be read as an instant is rejected,
// unlike the lenient read path which treats it as unset.
func normalizeTimeline(v *validator.Validate, req domain.TimelineRequest) (lifecycle.Timeline, error) {
	var bounds timelineBounds
	fields := []struct {
		name string
		raw  any
		dst  **time.Time
	}{
		{"registration_start", req.RegistrationStart, &bounds.RegistrationStart},
		{"registration_end", req.RegistrationEnd, &bounds.RegistrationEnd},
		{"building_start", req.BuildingStart, &bounds.BuildingStart},
		{"building_end", req.BuildingEnd, &bounds.BuildingEnd},
		{"voting_start", req.VotingStart, &bounds.VotingStart},
		{"voting_end", req.VotingEnd, &bounds.VotingEnd},
	}
	for _, f := range fields {
		if isBlank(f.raw) {
			continue
		}
		parsed := lifecycle.ParseInstant(f.raw)
		if parsed == nil {
			return lifecycle.Timeline{}, domain.WrapError(domain.ErrInvalidTimeline,
				fmt.Sprintf("%s: unrecognized date %v", f.name, f.raw))
		}
		*f.dst = parsed
	}

	if err := v.Struct(bounds); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must not be after %s", fe.Field(), fe.Param()))
			}
			return lifecycle.Timeline{}, domain.WrapError(domain.ErrInvalidTimeline, strings.Join(msgs, "; "))
		}
		return lifecycle.Timeline{}, err
	}

	timeline := lifecycle.Timeline{
		Registration: lifecycle.TimePeriod{Start: bounds.RegistrationStart, End: bounds.RegistrationEnd},
		Building:     lifecycle.TimePeriod{Start: bounds.BuildingStart, End: bounds.BuildingEnd},
	}
	if bounds.VotingStart != nil || bounds.VotingEnd != nil {
		timeline.Voting = &lifecycle.TimePeriod{Start: bounds.VotingStart, End: bounds.VotingEnd}
	}
	return timeline, nil
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// slugFolder returns a fresh accent-folding chain; chains hold state and
// must not be shared between goroutines.
func slugFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// slugify folds accents and reduces name to lowercase ASCII words joined by dashes
func slugify(name string) string {
	folded, _, err := transform.String(slugFolder(), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "hackathon"
	}
	if len(slug) > 60 {
		slug = strings.TrimSuffix(slug[:60], "-")
	}
	return slug
}

func slugWithSuffix(slug string) string {
	return slug + "-" + uuid.NewString()[:8]
}
