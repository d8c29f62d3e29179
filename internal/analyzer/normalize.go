package analyzer

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"claimrisk/internal/domain"
)

const (
	defaultRiskScore = 50
	minRiskScore     = 0
	maxRiskScore     = 100

	// FallbackReasoning is returned when a model reply cannot be parsed.
	FallbackReasoning = "Unable to parse model response. Please review manually."
	// UnavailableReasoning is returned when the model could not be reached.
	UnavailableReasoning = "Model service unavailable. Please review manually."

	defaultReasoning = "No reasoning provided"
)

const fence = "```"

var fencedBlockRegex = regexp.MustCompile("(?s)" + fence + `[ \t]*(?:[jJ][sS][oO][nN])?[ \t]*\r?\n?(.*?)\s*` + fence)

// FallbackVerdict is the fail-safe verdict for unparsable model output.
func FallbackVerdict() domain.Verdict {
	return domain.Verdict{
		RiskScore:      defaultRiskScore,
		Recommendation: domain.RecommendationReview,
		Reasoning:      FallbackReasoning,
	}
}

// UnavailableVerdict is the fail-safe verdict used when the model call itself failed.
func UnavailableVerdict() domain.Verdict {
	v := FallbackVerdict()
	v.Reasoning = UnavailableReasoning
	return v
}

// Normalize turns a raw model reply into a verdict that always satisfies the
// domain.Verdict invariants. It never fails: unparsable input yields
// FallbackVerdict and each field is defaulted and range-checked on its own.
func Normalize(raw string) domain.Verdict {
	fields, ok := decodeObject(StripCodeFences(raw))
	if !ok {
		// Prose around a fenced block, e.g. "Here is the result: ```json {...}```".
		m := fencedBlockRegex.FindStringSubmatch(raw)
		if m == nil {
			return FallbackVerdict()
		}
		if fields, ok = decodeObject(strings.TrimSpace(m[1])); !ok {
			return FallbackVerdict()
		}
	}

	return domain.Verdict{
		RiskScore:      riskScore(fields["risk_score"]),
		Recommendation: recommendation(fields["recommendation"]),
		Reasoning:      reasoning(fields["reasoning"]),
	}
}

// StripCodeFences removes a markdown code fence (with an optional json tag)
// wrapping s. Text that does not start with a fence is only trimmed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = strings.TrimLeft(s[len(fence):], " \t")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// ClampRiskScore bounds v to [0, 100].
func ClampRiskScore(v int) int {
	return max(minRiskScore, min(maxRiskScore, v))
}

// TruncateReasoning cuts s to at most domain.MaxReasoningLength characters.
func TruncateReasoning(s string) string {
	if len(s) <= domain.MaxReasoningLength {
		return s
	}
	runes := []rune(s)
	if len(runes) <= domain.MaxReasoningLength {
		return s
	}
	return string(runes[:domain.MaxReasoningLength])
}

func decodeObject(text string) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func riskScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return defaultRiskScore
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return defaultRiskScore
	}
	switch t := v.(type) {
	case json.Number:
		return scoreFromString(t.String())
	case string:
		return scoreFromString(strings.TrimSpace(t))
	default:
		return defaultRiskScore
	}
}

func scoreFromString(s string) int {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampScore64(float64(n))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultRiskScore
	}
	return clampScore64(math.Trunc(f))
}

func clampScore64(f float64) int {
	switch {
	case f < minRiskScore:
		return minRiskScore
	case f > maxRiskScore:
		return maxRiskScore
	default:
		return int(f)
	}
}

func recommendation(raw json.RawMessage) domain.Recommendation {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return domain.RecommendationReview
	}
	r := domain.Recommendation(strings.ToUpper(s))
	if !r.IsValid() {
		return domain.RecommendationReview
	}
	return r
}

func reasoning(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return defaultReasoning
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		// Non-string values keep their JSON text.
		s = string(trimmed)
	}
	return TruncateReasoning(s)
}
