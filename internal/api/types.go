package api

// Wire types for the courtroom simulator backend. The service echoes case_id
// on most responses; callers that already know it can ignore the field.

// UploadResult is returned by POST /upload. RawText is an excerpt of the
// extracted document text, truncated server-side for large documents.
type UploadResult struct {
	CaseID  string `json:"case_id"`
	RawText string `json:"raw_text"`
	Message string `json:"message,omitempty"`
}

// CaseDetails holds the structured record extracted from the case document.
type CaseDetails struct {
	CaseID  string `json:"case_id,omitempty"`
	Facts   string `json:"facts"`
	Issues  string `json:"issues"`
	Holding string `json:"holding"`
}

// Prediction is the baseline classifier outcome. Confidence is 0–100.
type Prediction struct {
	CaseID     string  `json:"case_id,omitempty"`
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Turn is one argument in the debate transcript.
type Turn struct {
	Round    int    `json:"round"`
	Speaker  string `json:"speaker"`
	Argument string `json:"argument"`
}

// Verdict is the judge's ruling after the debate. Reasoning and
// SupportingEvidence are optional; absence means nothing to show.
type Verdict struct {
	Verdict            string   `json:"verdict"`
	Confidence         float64  `json:"confidence"`
	Reasoning          []string `json:"reasoning,omitempty"`
	SupportingEvidence []string `json:"supporting_evidence,omitempty"`
}

// Simulation is the full debate result from POST /simulate.
type Simulation struct {
	CaseID          string  `json:"case_id,omitempty"`
	RoundsCompleted int     `json:"rounds_completed"`
	Transcript      []Turn  `json:"debate_transcript"`
	Verdict         Verdict `json:"verdict"`
}

// AuditResult is the fairness assessment of the case and verdict.
// FairnessScore is 0–100, higher meaning fairer. The list fields are
// optional.
type AuditResult struct {
	FairnessScore   float64  `json:"fairness_score"`
	BiasedTerms     []string `json:"biased_terms,omitempty"`
	BiasTypes       []string `json:"bias_types,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// auditEnvelope wraps AuditResult on the wire.
type auditEnvelope struct {
	CaseID      string      `json:"case_id"`
	AuditResult AuditResult `json:"audit_result"`
}

// CaseRecord is the raw server-side case document, schema owned by the
// backend. Kept generic so new server fields never break the client.
type CaseRecord map[string]any
