package analyzer_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"claimrisk/internal/analyzer"
	"claimrisk/internal/domain"
)

func assertInvariants(t *testing.T, v domain.Verdict) {
	t.Helper()
	assert.GreaterOrEqual(t, v.RiskScore, 0)
	assert.LessOrEqual(t, v.RiskScore, 100)
	assert.True(t, v.Recommendation.IsValid(), "recommendation %q", v.Recommendation)
	assert.LessOrEqual(t, utf8.RuneCountInString(v.Reasoning), domain.MaxReasoningLength)
	assert.True(t, utf8.ValidString(v.Reasoning))
}

func TestNormalize_WellFormed(t *testing.T) {
	v := analyzer.Normalize(`{"risk_score": 35, "recommendation": "APPROVE", "reasoning": "Receipts attached."}`)

	assert.Equal(t, domain.Verdict{RiskScore: 35, Recommendation: domain.RecommendationApprove, Reasoning: "Receipts attached."}, v)
}

func TestNormalize_ScenarioOutOfRangeAndUnknown(t *testing.T) {
	v := analyzer.Normalize(`{"risk_score": 150, "recommendation": "maybe", "reasoning": "x"}`)

	assert.Equal(t, domain.Verdict{RiskScore: 100, Recommendation: domain.RecommendationReview, Reasoning: "x"}, v)
}

func TestNormalize_Unparsable(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not json at all",
		"{risk_score: 10}",
		`{"risk_score": 10`,
		"null",
		"[1, 2, 3]",
		`"just a string"`,
		"42",
		"```json\n```",
	}
	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			v := analyzer.Normalize(in)
			assert.Equal(t, analyzer.FallbackVerdict(), v)
			assertInvariants(t, v)
		})
	}
}

func TestFallbackVerdict(t *testing.T) {
	assert.Equal(t, domain.Verdict{
		RiskScore:      50,
		Recommendation: domain.RecommendationReview,
		Reasoning:      "Unable to parse model response. Please review manually.",
	}, analyzer.FallbackVerdict())
}

func TestNormalize_MissingFieldsDefaultIndependently(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Verdict
	}{
		{`{}`, domain.Verdict{RiskScore: 50, Recommendation: domain.RecommendationReview, Reasoning: "No reasoning provided"}},
		{`{"risk_score": 20}`, domain.Verdict{RiskScore: 20, Recommendation: domain.RecommendationReview, Reasoning: "No reasoning provided"}},
		{`{"recommendation": "deny"}`, domain.Verdict{RiskScore: 50, Recommendation: domain.RecommendationDeny, Reasoning: "No reasoning provided"}},
		{`{"reasoning": "only this"}`, domain.Verdict{RiskScore: 50, Recommendation: domain.RecommendationReview, Reasoning: "only this"}},
		{`{"risk_score": "high", "recommendation": "APPROVE", "reasoning": "r"}`, domain.Verdict{RiskScore: 50, Recommendation: domain.RecommendationApprove, Reasoning: "r"}},
		{`{"risk_score": null, "recommendation": null, "reasoning": null}`, domain.Verdict{RiskScore: 50, Recommendation: domain.RecommendationReview, Reasoning: "No reasoning provided"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.Normalize(tt.in))
		})
	}
}

func TestNormalize_ClampLaw(t *testing.T) {
	for _, v := range []int{-1000000, -101, -1, 0, 1, 49, 50, 99, 100, 101, 150, 1 << 40} {
		got := analyzer.Normalize(fmt.Sprintf(`{"risk_score": %d}`, v))
		assert.Equal(t, max(0, min(100, v)), got.RiskScore, "input %d", v)
	}
}

func TestNormalize_RiskScoreCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`72.9`, 72},
		{`-3.5`, 0},
		{`1e3`, 100},
		{`1e400`, 50},
		{`"72"`, 72},
		{`" 15 "`, 15},
		{`"abc"`, 50},
		{`"Infinity"`, 50},
		{`"-inf"`, 50},
		{`"+Inf"`, 50},
		{`"NaN"`, 50},
		{`true`, 50},
		{`[10]`, 50},
		{`{"v": 10}`, 50},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := analyzer.Normalize(`{"risk_score": ` + tt.raw + `}`)
			assert.Equal(t, tt.want, got.RiskScore)
		})
	}
}

func TestNormalize_EnumLaw(t *testing.T) {
	for _, r := range []string{"maybe", "", "approved", "REJECT", " approve", "ERROR", "review please"} {
		got := analyzer.Normalize(fmt.Sprintf(`{"recommendation": %q}`, r))
		assert.Equal(t, domain.RecommendationReview, got.Recommendation, "input %q", r)
	}
	for in, want := range map[string]domain.Recommendation{
		"approve": domain.RecommendationApprove,
		"Review":  domain.RecommendationReview,
		"DENY":    domain.RecommendationDeny,
	} {
		got := analyzer.Normalize(fmt.Sprintf(`{"recommendation": %q}`, in))
		assert.Equal(t, want, got.Recommendation)
	}
}

func TestNormalize_RecommendationNonString(t *testing.T) {
	got := analyzer.Normalize(`{"recommendation": 1}`)
	assert.Equal(t, domain.RecommendationReview, got.Recommendation)
}

func TestNormalize_TruncationLaw(t *testing.T) {
	long := strings.Repeat("abcdefghij", 150)

	got := analyzer.Normalize(fmt.Sprintf(`{"reasoning": %q}`, long))

	assert.Len(t, got.Reasoning, 1000)
	assert.True(t, strings.HasPrefix(long, got.Reasoning))
}

func TestNormalize_TruncationMultiByte(t *testing.T) {
	long := strings.Repeat("é", 1200)

	got := analyzer.Normalize(fmt.Sprintf(`{"reasoning": %q}`, long))

	assert.Equal(t, 1000, utf8.RuneCountInString(got.Reasoning))
	assert.True(t, utf8.ValidString(got.Reasoning))
	assert.True(t, strings.HasPrefix(long, got.Reasoning))
}

func TestNormalize_ReasoningNonString(t *testing.T) {
	assert.Equal(t, "42", analyzer.Normalize(`{"reasoning": 42}`).Reasoning)
	assert.Equal(t, "", analyzer.Normalize(`{"reasoning": ""}`).Reasoning)
}

func TestNormalize_FenceStripping(t *testing.T) {
	bare := `{"risk_score": 61, "recommendation": "REVIEW", "reasoning": "Missing police report."}`
	want := analyzer.Normalize(bare)

	for _, in := range []string{
		"```json\n" + bare + "\n```",
		"```JSON\n" + bare + "\n```",
		"```\n" + bare + "\n```",
		"  ```json" + bare + "```  ",
		"```json\n" + bare,
		"``` json\n" + bare + "\n```",
		"```\tjson\n" + bare + "\n```",
		"Result:\n``` json\n" + bare + "\n```",
		"Here is my assessment:\n```json\n" + bare + "\n```\nLet me know.",
	} {
		assert.Equal(t, want, analyzer.Normalize(in), "input %q", in)
	}
}

func TestNormalize_FenceInsideReasoningIsKept(t *testing.T) {
	in := "{\"risk_score\": 10, \"recommendation\": \"APPROVE\", \"reasoning\": \"see ```\"}"

	got := analyzer.Normalize(in)

	assert.Equal(t, "see ```", got.Reasoning)
	assert.Equal(t, 10, got.RiskScore)
}

func TestNormalize_Idempotent(t *testing.T) {
	in := `{"risk_score": 88, "recommendation": "deny", "reasoning": "Duplicate invoice numbers."}`

	assert.Equal(t, analyzer.Normalize(in), analyzer.Normalize(in))
}

func TestNormalize_AdversarialInputsKeepInvariants(t *testing.T) {
	inputs := []string{
		`{"risk_score": -9223372036854775808}`,
		`{"risk_score": 9223372036854775807999}`,
		`{"risk_score": "NaN"}`,
		`{"risk_score": "Infinity"}`,
		`{"recommendation": "APPROVE\u0000"}`,
		`{"reasoning": "` + strings.Repeat("🙂", 2000) + `"}`,
		`{"risk_score": 10, "risk_score": 999}`,
		"```json\n{\"risk_score\": 1e309}\n```",
		"\xff\xfe{}",
	}
	for _, in := range inputs {
		assertInvariants(t, analyzer.Normalize(in))
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, analyzer.StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, analyzer.StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, analyzer.StripCodeFences("  {\"a\":1}  "))
	assert.Equal(t, "", analyzer.StripCodeFences("```json```"))
	assert.Equal(t, `{"a":1}`, analyzer.StripCodeFences("``` json\n{\"a\":1}\n```"))
}

func TestClampRiskScore(t *testing.T) {
	assert.Equal(t, 0, analyzer.ClampRiskScore(-5))
	assert.Equal(t, 42, analyzer.ClampRiskScore(42))
	assert.Equal(t, 100, analyzer.ClampRiskScore(101))
}

func TestTruncateReasoning(t *testing.T) {
	assert.Equal(t, "short", analyzer.TruncateReasoning("short"))
	assert.Len(t, analyzer.TruncateReasoning(strings.Repeat("x", 1001)), 1000)
}

func TestUnavailableVerdict(t *testing.T) {
	v := analyzer.UnavailableVerdict()

	assert.Equal(t, 50, v.RiskScore)
	assert.Equal(t, domain.RecommendationReview, v.Recommendation)
	assert.Equal(t, analyzer.UnavailableReasoning, v.Reasoning)
}
