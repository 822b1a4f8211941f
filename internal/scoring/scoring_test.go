package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/resumatch/internal/model"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 77, want: 76},
		{in: 79, want: 80},
		{in: 101, want: 100},
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 100, want: 100},
		{in: 50, want: 50},
		{in: 51, want: 52},
		{in: 52.9, want: 52},
		{in: 53.1, want: 54},
		{in: 1000, want: 100},
		{in: math.Inf(1), want: 100},
		{in: math.Inf(-1), want: 0},
		{in: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		got := Quantize(tt.in)
		require.Equal(t, tt.want, got, "quantize(%v)", tt.in)
		require.Zero(t, math.Mod(got, Step))
	}
}

func TestNormalizeKnownFields(t *testing.T) {
	report := &model.MatchReport{
		OverallMatch: &model.OverallMatch{Score: model.Float(77), Summary: "ok"},
		SkillsAnalysis: []model.SkillMatch{
			{Skill: "Go", Match: model.Float(91)},
			{Skill: "SQL"},
			{Skill: "K8s", Match: model.Float(-3)},
		},
		Experience: &model.SectionMatch{Match: model.Float(79)},
		Education:  &model.SectionMatch{Match: model.Float(101)},
	}
	out := Normalize(report)

	require.Equal(t, 76.0, *out.OverallMatch.Score)
	require.Equal(t, "ok", out.OverallMatch.Summary)
	require.Equal(t, 92.0, *out.SkillsAnalysis[0].Match)
	require.Nil(t, out.SkillsAnalysis[1].Match)
	require.Equal(t, 0.0, *out.SkillsAnalysis[2].Match)
	require.Equal(t, 80.0, *out.Experience.Match)
	require.Equal(t, 100.0, *out.Education.Match)

	require.Equal(t, 77.0, *report.OverallMatch.Score, "input must stay untouched")
	require.Equal(t, 91.0, *report.SkillsAnalysis[0].Match)
}

func TestNormalizeMissingSections(t *testing.T) {
	require.Nil(t, Normalize(nil))

	out := Normalize(&model.MatchReport{})
	require.Nil(t, out.OverallMatch)
	require.Nil(t, out.SkillsAnalysis)
	require.Nil(t, out.Experience)
	require.Nil(t, out.Education)

	out = Normalize(&model.MatchReport{OverallMatch: &model.OverallMatch{Summary: "no score"}})
	require.Nil(t, out.OverallMatch.Score)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	report := &model.MatchReport{
		OverallMatch: &model.OverallMatch{Score: model.Float(63.4)},
		Experience:   &model.SectionMatch{Match: model.Float(12.2)},
	}
	once := Normalize(report)
	twice := Normalize(once)
	require.Equal(t, once, twice)
}
