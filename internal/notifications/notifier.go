package notifications

import "context"

type SendEnrollmentConfirmationInput struct {
	Email        string
	UserName     string
	CourseID     string
	CourseTitle  string
	EnrollmentID string
}

type Notifier interface {
	SendEnrollmentConfirmation(ctx context.Context, input SendEnrollmentConfirmationInput) error
}
