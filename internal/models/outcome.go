package models

// Outcome is the result of one extraction request. It is either a
// CandidateList or a ReadFailure; no other implementations exist.
type Outcome interface {
	outcome()
}

// CandidateList holds the candidates the model extracted from a batch.
type CandidateList struct {
	Candidates []Candidate
}

// ReadFailure explains why the model could not extract any candidate.
type ReadFailure struct {
	Explanation string
}

func (CandidateList) outcome() {}
func (ReadFailure) outcome()   {}

const (
	OutcomeCandidates = "candidates"
	OutcomeFailure    = "failure"
)

// OutcomeKind returns the wire name of the outcome variant.
func OutcomeKind(o Outcome) string {
	switch o.(type) {
	case CandidateList:
		return OutcomeCandidates
	case ReadFailure:
		return OutcomeFailure
	default:
		return ""
	}
}
