package model

// Conclusion is the terminal state GitHub reports for a workflow run or job.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionUnknown   Conclusion = "unknown"
)

// ParseConclusion maps a raw provider string to a Conclusion. Anything
// unrecognized, including the empty string of a still-running job, becomes
// ConclusionUnknown.
func ParseConclusion(s string) Conclusion {
	switch Conclusion(s) {
	case ConclusionSuccess, ConclusionFailure, ConclusionCancelled, ConclusionSkipped:
		return Conclusion(s)
	default:
		return ConclusionUnknown
	}
}

// Symbol renders the conclusion as the single-character marker used in ledger
// rows.
func (c Conclusion) Symbol() string {
	switch c {
	case ConclusionSuccess:
		return "✅"
	case ConclusionFailure:
		return "❌"
	case ConclusionCancelled:
		return "⚪"
	case ConclusionSkipped:
		return "🚫"
	default:
		return "?"
	}
}

func (c Conclusion) String() string {
	return string(c)
}
