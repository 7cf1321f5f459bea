package db

import (
	"context"
	"time"

	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSeedCourses inserts a small demo catalog when SEED_COURSES=1 and the
// table is empty. The API exposes no course-create endpoint, so without this a
// fresh install has nothing to enroll in.
func EnsureSeedCourses(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if !cfg.SeedCourses {
		return nil
	}

	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	now := time.Now().UTC()

	seed := []course.Course{
		{
			ID:          uuid.NewString(),
			Title:       "Spoken English Foundations",
			Price:       1500,
			Description: "Everyday conversation practice for beginners.",
			Topics:      []string{"listening", "speaking", "vocabulary"},
			MeetingLink: "https://meet.google.com/demo-spoken-english",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Freelance Web Development",
			Price:       3000,
			Description: "HTML, CSS and JavaScript up to a first client project.",
			Topics:      []string{"html", "css", "javascript", "portfolio"},
			MeetingLink: "https://meet.google.com/demo-web-dev",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Digital Marketing Basics",
			Price:       2000,
			Description: "Social campaigns, SEO fundamentals and analytics.",
			Topics:      []string{"seo", "social media", "analytics"},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, c := range seed {
		_, err = pool.Exec(ctx,
			`INSERT INTO courses (id, title, price, image, description, topics, meeting_link, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`,
			c.ID, c.Title, c.Price, c.Image, c.Description, c.Topics, c.MeetingLink, c.CreatedAt, c.UpdatedAt,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
