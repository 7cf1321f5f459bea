package enrollment

import (
	"errors"
	"fmt"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/bkbadhon/elearning/internal/domain/user"
	"github.com/google/uuid"
)

// An Enrollment is a denormalized snapshot of the user and course at the
// moment of enrollment. It is written once and never mutated, so later edits
// to the course catalog do not rewrite history.
type Enrollment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	UserName          string    `json:"userName"`
	UserPhone         string    `json:"userPhone,omitempty"`
	CourseID          string    `json:"courseId"`
	CourseTitle       string    `json:"courseTitle"`
	CoursePrice       int64     `json:"coursePrice"`
	CourseImage       string    `json:"courseImage,omitempty"`
	CourseDescription string    `json:"courseDescription,omitempty"`
	CourseTopics      []string  `json:"courseTopics"`
	MeetingLink       string    `json:"meetingLink,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("enrollment not found")

// InsufficientFundsError carries the shortfall so callers can surface it.
type InsufficientFundsError struct {
	Shortfall int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: %d more required to enroll", e.Shortfall)
}

type EnrollRequest struct {
	UserID   string `json:"userId" binding:"required,uuid4"`
	CourseID string `json:"courseId" binding:"required,uuid4"`
}

// Result of a successful enrollment transaction. UserEmail is carried for the
// confirmation job payload; it is not part of the stored snapshot.
type Result struct {
	Enrollment Enrollment
	NewBalance int64
	UserEmail  string
}

// builds the snapshot from the records resolved inside the transaction

func NewFromUserAndCourse(u user.User, c course.Course) Enrollment {
	return Enrollment{
		ID:                uuid.NewString(),
		UserID:            u.ID,
		UserName:          u.FullName(),
		UserPhone:         u.Phone,
		CourseID:          c.ID,
		CourseTitle:       c.Title,
		CoursePrice:       c.Price,
		CourseImage:       c.Image,
		CourseDescription: c.Description,
		CourseTopics:      c.Topics,
		MeetingLink:       c.MeetingLink,
		CreatedAt:         time.Now().UTC(),
	}
}
