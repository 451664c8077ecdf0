package types

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome is the terminal value of a deploy run.
type Outcome struct {
	Status               OutcomeStatus
	BuildURL             string
	PublicInstallPageURL string
	Reason               string
}

func SuccessOutcome(buildURL string, publicPageURL string) Outcome {
	return Outcome{
		Status:               OutcomeSuccess,
		BuildURL:             buildURL,
		PublicInstallPageURL: publicPageURL,
	}
}

func FailureOutcome(reason string) Outcome {
	return Outcome{Status: OutcomeFailure, Reason: reason}
}

func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// ExitCode is the process exit status for the outcome.
func (o Outcome) ExitCode() int {
	if o.Succeeded() {
		return 0
	}
	return 1
}
