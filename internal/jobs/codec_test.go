package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecode_EnrollmentConfirmation(t *testing.T) {
	payload := EnrollmentConfirmationPayload{
		EnrollmentID: "enr-123",
		UserID:       "user-456",
		CourseID:     "course-789",
		Email:        "rahim@example.com",
		UserName:     "Rahim Uddin",
		CourseTitle:  "Spoken English Foundations",
		RequestedAt:  time.Now().UTC(),
	}

	b, err := EncodePayload(JobEnrollmentConfirmation, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	decoded, err := DecodePayload(JobEnrollmentConfirmation, b)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(EnrollmentConfirmationPayload)
	if !ok {
		t.Fatalf("expected EnrollmentConfirmationPayload, got %T", decoded)
	}

	if p.EnrollmentID != payload.EnrollmentID {
		t.Fatalf("expected enrollmentId %s, got %s", payload.EnrollmentID, p.EnrollmentID)
	}

	if p.Email != payload.Email {
		t.Fatalf("expected email %s, got %s", payload.Email, p.Email)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobEnrollmentConfirmation, struct{ X int }{X: 1})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestDecodePayload_InvalidType(t *testing.T) {
	_, err := DecodePayload(JobType("bogus"), []byte(`{}`))
	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestDecodePayload_EmptyPayload(t *testing.T) {
	_, err := DecodePayload(JobEnrollmentConfirmation, nil)
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	err := ValidatePayload(JobEnrollmentConfirmation, EnrollmentConfirmationPayload{EnrollmentID: ""})
	if err == nil {
		t.Fatalf("expected error")
	}
}
