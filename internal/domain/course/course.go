package course

import (
	"errors"
	"time"
)

// Courses are read-only from the API's perspective; the catalog is managed
// out of band (seeding or direct DB access).
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Topics      []string  `json:"topics"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("course not found")
