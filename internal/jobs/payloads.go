package jobs

import (
	"encoding/json"
	"time"
)

// EnrollmentConfirmationPayload carries everything the worker needs to notify
// the student without re-reading the enrollment row.
type EnrollmentConfirmationPayload struct {
	EnrollmentID string    `json:"enrollmentId"`
	UserID       string    `json:"userId"`
	CourseID     string    `json:"courseId"`
	Email        string    `json:"email"`
	UserName     string    `json:"userName"`
	CourseTitle  string    `json:"courseTitle"`
	RequestedAt  time.Time `json:"requestedAt"`
}

func (p EnrollmentConfirmationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
