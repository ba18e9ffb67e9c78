package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestRuleApply(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		now  time.Time
		want Issue
	}{
		{"current week", Rule{}, date(2025, 4, 16), Issue{Year: 2025, Number: 16}},
		{"thursday next week", Rule{WeekOffset: 1}, date(2025, 4, 17), Issue{Year: 2025, Number: 17}},
		{"thursday before friday cutoff", Rule{Cutoff: time.Friday, HasCutoff: true}, date(2025, 4, 17), Issue{Year: 2025, Number: 15}},
		{"friday on cutoff", Rule{Cutoff: time.Friday, HasCutoff: true}, date(2025, 4, 18), Issue{Year: 2025, Number: 16}},
		{"sunday after cutoff", Rule{Cutoff: time.Friday, HasCutoff: true}, date(2025, 4, 20), Issue{Year: 2025, Number: 16}},
		{"next week wraps year", Rule{WeekOffset: 1}, date(2025, 12, 25), Issue{Year: 2026, Number: 1}},
		{"iso year differs from calendar year", Rule{}, date(2024, 12, 30), Issue{Year: 2025, Number: 1}},
		{"cutoff shifts back into first week", Rule{Cutoff: time.Wednesday, HasCutoff: true}, date(2026, 1, 5), Issue{Year: 2026, Number: 1}},
		{"monday before sunday cutoff", Rule{Cutoff: time.Sunday, HasCutoff: true}, date(2025, 1, 6), Issue{Year: 2025, Number: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.rule.Apply(tt.now))
		})
	}
}

func TestRuleApplyIsDeterministic(t *testing.T) {
	r := Rule{WeekOffset: 1}
	now := date(2025, 4, 17)
	require.Equal(t, r.Apply(now), r.Apply(now))
}

func TestNewRule(t *testing.T) {
	r, err := NewRule(1, "")
	require.NoError(t, err)
	require.False(t, r.HasCutoff)
	require.Equal(t, 1, r.WeekOffset)

	r, err = NewRule(0, "Thu")
	require.NoError(t, err)
	require.True(t, r.HasCutoff)
	require.Equal(t, time.Thursday, r.Cutoff)

	_, err = NewRule(0, "someday")
	require.Error(t, err)
}

func TestSlug(t *testing.T) {
	require.Equal(t, "1625", Issue{Year: 2025, Number: 16}.Slug())
	require.Equal(t, "0126", Issue{Year: 2026, Number: 1}.Slug())
	require.Equal(t, "0500", Issue{Year: 2100, Number: 5}.Slug())
}

func TestParseEdition(t *testing.T) {
	iss, err := ParseEdition("DIE ZEIT 16/2025")
	require.NoError(t, err)
	require.Equal(t, Issue{Year: 2025, Number: 16}, iss)

	_, err = ParseEdition("DIE ZEIT")
	require.Error(t, err)

	_, err = ParseEdition("")
	require.Error(t, err)

	_, err = ParseEdition("DIE ZEIT 99/2025")
	require.Error(t, err)
}
