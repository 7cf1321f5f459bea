package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Opaque keyset cursor for the enrollment listing. (created_at, id) is the
// stable sort key the repo paginates on.
type EnrollmentCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeEnrollmentCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(EnrollmentCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeEnrollmentCursor(cursor string) (EnrollmentCursor, error) {
	if cursor == "" {
		return EnrollmentCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return EnrollmentCursor{}, err
	}

	var c EnrollmentCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return EnrollmentCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return EnrollmentCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
