package jobs

type JobType string

const (
	JobEnrollmentConfirmation JobType = "enrollment.confirmation"
)

// check the job type against the known constants

func (t JobType) IsValid() bool {
	switch t {
	case JobEnrollmentConfirmation:
		return true
	default:
		return false
	}
}
