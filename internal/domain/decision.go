package domain

// FinalDecision enumerates the terminal outcomes of a document analysis.
type FinalDecision string

const (
	DecisionApproved   FinalDecision = "APPROVED"
	DecisionReview     FinalDecision = "REVIEW"
	DecisionSuspicious FinalDecision = "SUSPICIOUS"
	DecisionRejected   FinalDecision = "REJECTED"
)
