package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2024-05-01T12:00:00Z"`
}

// AnalysisResponseBody documents the envelope returned by POST /analyze.
// The handlers encode domain.AnalysisResult, which has the same shape.
type AnalysisResponseBody struct {
	RiskScore      int    `json:"risk_score" example:"35"`
	Recommendation string `json:"recommendation" example:"APPROVE" enums:"APPROVE,REVIEW,DENY,ERROR"`
	Reasoning      string `json:"reasoning" example:"All supporting documents are present and amounts are consistent."`
	Filename       string `json:"filename,omitempty" example:"claim_1042.pdf"`
	ProcessedAt    string `json:"processed_at,omitempty" example:"2024-05-01T12:00:00Z"`
	Model          string `json:"model,omitempty" example:"gemini-2.0-flash"`
	Error          string `json:"error,omitempty" example:"Invalid file type"`
	ErrorKind      string `json:"error_kind,omitempty" example:"UnsupportedType"`
}
