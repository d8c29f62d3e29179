package analyzer

// DefaultMaxPromptChars bounds the claim text embedded in a prompt.
const DefaultMaxPromptChars = 3000

// BuildClaimPrompt returns the risk-assessment prompt for extracted claim
// text, keeping at most maxChars characters of the claim.
func BuildClaimPrompt(claimText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}
	return `Analyze this insurance claim document and assess the risk level:

` + truncateRunes(claimText, maxChars) + `

Evaluate the claim based on:
- Document completeness and clarity
- Claim amount reasonableness
- Supporting evidence quality
- Red flags or inconsistencies

Return ONLY a valid JSON object with no additional text or formatting, using exactly these keys:
{"risk_score": <integer 0-100, 0=low risk, 100=high risk>, "recommendation": "APPROVE" | "REVIEW" | "DENY", "reasoning": "<explanation for the score and recommendation>"}`
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Truncate shortens s for log output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return truncateRunes(s, maxLen) + "..."
}
