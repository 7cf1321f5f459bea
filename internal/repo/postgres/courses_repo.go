package postgres

import (
	"context"
	"errors"

	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/bkbadhon/elearning/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, prom: prom}
}

func (r *CoursesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// List returns the whole catalog. The upstream contract is an unpaginated
// array; the catalog is small and sits behind the redis cache.
func (r *CoursesRepo) List(ctx context.Context) (courses []course.Course, err error) {
	var rows pgx.Rows

	err = r.observe("courses.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, price, image, description, topics, meeting_link, created_at, updated_at
			FROM courses
			ORDER BY created_at ASC, id ASC
			`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	courses = make([]course.Course, 0)

	for rows.Next() {
		var c course.Course

		e := rows.Scan(&c.ID, &c.Title, &c.Price, &c.Image, &c.Description, &c.Topics, &c.MeetingLink, &c.CreatedAt, &c.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		courses = append(courses, c)
	}

	e := rows.Err()

	if e != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("courses.list", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	var c course.Course

	err := r.observe("courses.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, price, image, description, topics, meeting_link, created_at, updated_at
			FROM courses
			WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Title, &c.Price, &c.Image, &c.Description, &c.Topics, &c.MeetingLink, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}
