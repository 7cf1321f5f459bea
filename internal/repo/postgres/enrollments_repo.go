package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/course"
	"github.com/bkbadhon/elearning/internal/domain/enrollment"
	"github.com/bkbadhon/elearning/internal/domain/user"
	"github.com/bkbadhon/elearning/internal/observability"
	"github.com/bkbadhon/elearning/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEnrollmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EnrollmentsRepo {
	return &EnrollmentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *EnrollmentsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *EnrollmentsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// EnrollTx performs the balance check, the debit and the snapshot insert
// inside the caller's transaction. The user row is locked FOR UPDATE so two
// concurrent enrollments for the same user serialize on the balance instead of
// both reading the starting value.
func (repo *EnrollmentsRepo) EnrollTx(ctx context.Context, tx pgx.Tx, userID, courseID string) (res enrollment.Result, err error) {
	// 1) lock the paying user's row
	var u user.User

	err = repo.observe("enrollments.enroll_tx.lock_user", func() error {
		return tx.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, password, balance, created_at, updated_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}

		return
	}

	// 2) resolve the course
	var c course.Course

	err = repo.observe("enrollments.enroll_tx.get_course", func() error {
		return tx.QueryRow(ctx, `
		SELECT id, title, price, image, description, topics, meeting_link, created_at, updated_at
		FROM courses
		WHERE id = $1
	`, courseID).Scan(&c.ID, &c.Title, &c.Price, &c.Image, &c.Description, &c.Topics, &c.MeetingLink, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = course.ErrNotFound
		}

		return
	}

	if u.Balance < c.Price {
		err = &enrollment.InsufficientFundsError{Shortfall: c.Price - u.Balance}
		return
	}

	newBalance := u.Balance - c.Price

	// 3) debit
	err = repo.observe("enrollments.enroll_tx.debit", func() error {
		_, e := tx.Exec(ctx, `
		UPDATE users
		SET balance = $2,
		    updated_at = NOW()
		WHERE id = $1
	`, u.ID, newBalance)
		return e
	})

	if err != nil {
		return
	}

	enr := enrollment.NewFromUserAndCourse(u, c)

	// 4) snapshot insert
	err = repo.observe("enrollments.enroll_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO enrollments (
			id, user_id, user_name, user_phone,
			course_id, course_title, course_price, course_image,
			course_description, course_topics, meeting_link, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, enr.ID, enr.UserID, enr.UserName, enr.UserPhone,
			enr.CourseID, enr.CourseTitle, enr.CoursePrice, enr.CourseImage,
			enr.CourseDescription, enr.CourseTopics, enr.MeetingLink, enr.CreatedAt)
		return e
	})

	if err != nil {
		return
	}

	res = enrollment.Result{
		Enrollment: enr,
		NewBalance: newBalance,
		UserEmail:  u.Email,
	}
	return
}

// Enroll wraps EnrollTx in its own transaction for callers that have nothing
// else to attach to the commit.
func (repo *EnrollmentsRepo) Enroll(ctx context.Context, userID, courseID string) (res enrollment.Result, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	res, err = repo.EnrollTx(ctx, tx, userID, courseID)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

func (repo *EnrollmentsRepo) ListByUser(ctx context.Context, userID string) (enrollments []enrollment.Enrollment, err error) {
	var rows pgx.Rows

	err = repo.observe("enrollments.list_by_user", func() error {
		rows, err = repo.pool.Query(ctx, `
		SELECT id, user_id, user_name, user_phone,
		       course_id, course_title, course_price, course_image,
		       course_description, course_topics, meeting_link, created_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	enrollments = make([]enrollment.Enrollment, 0)

	for rows.Next() {
		var e enrollment.Enrollment

		scanErr := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.UserPhone,
			&e.CourseID, &e.CourseTitle, &e.CoursePrice, &e.CourseImage,
			&e.CourseDescription, &e.CourseTopics, &e.MeetingLink, &e.CreatedAt,
		)

		if scanErr != nil {
			err = scanErr
			return
		}
		enrollments = append(enrollments, e)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("enrollments.list_by_user", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// ListByUserCursor is the keyset-paginated variant for clients that pass a
// limit. The plain listing above stays the default contract.
func (repo *EnrollmentsRepo) ListByUserCursor(
	ctx context.Context,
	userID string,
	limit int,
	afterCreatedAt time.Time,
	afterID string,
) (items []enrollment.Enrollment, nextCursor *string, hasMore bool, err error) {
	op := "enrollments.list_by_user_cursor"

	q := `
		SELECT id, user_id, user_name, user_phone,
		       course_id, course_title, course_price, course_image,
		       course_description, course_topics, meeting_link, created_at
		FROM enrollments
		WHERE user_id = $1
		  AND (created_at, id) > ($2, $3)
		ORDER BY created_at ASC, id ASC
		LIMIT $4
	`
	limitPlusOne := limit + 1

	var rows pgx.Rows
	err = repo.observe(op, func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, q, userID, afterCreatedAt, afterID, limitPlusOne)
		return qerr
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]enrollment.Enrollment, 0, limit)

	for rows.Next() {
		var e enrollment.Enrollment
		if scanErr := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.UserPhone,
			&e.CourseID, &e.CourseTitle, &e.CoursePrice, &e.CourseImage,
			&e.CourseDescription, &e.CourseTopics, &e.MeetingLink, &e.CreatedAt,
		); scanErr != nil {
			return nil, nil, false, scanErr
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if len(out) > limit {
		hasMore = true
		out = out[:limit]
		last := out[len(out)-1]
		cur, encErr := utils.EncodeEnrollmentCursor(last.CreatedAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}
