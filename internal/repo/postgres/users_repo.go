package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fitstack/fitlog/internal/domain/user"
	"github.com/fitstack/fitlog/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersRepo persists each user as one row with the exercise log embedded as a
// JSONB array. Appending is a single UPDATE with the jsonb || operator, so
// concurrent appends to the same user serialize on the row and never lose
// entries; appends to different users do not contend at all.
type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	err := repo.observe("users.create", func() error {
		_, e := repo.pool.Exec(ctx,
			`INSERT INTO users(id, username, log) VALUES($1, $2, '[]'::jsonb)`,
			u.ID, u.Username)
		return e
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var rawLog []byte

	err := repo.observe("users.get_by_id", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT id, username, log FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Username, &rawLog)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	if err := json.Unmarshal(rawLog, &u.Log); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) ListAll(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := repo.observe("users.list_all", func() error {
		rows, err := repo.pool.Query(ctx,
			`SELECT id, username, log FROM users ORDER BY username ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User
			var rawLog []byte

			if err := rows.Scan(&u.ID, &u.Username, &rawLog); err != nil {
				return err
			}

			if err := json.Unmarshal(rawLog, &u.Log); err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// AppendExercise adds the entry to the end of the user's log and returns the
// updated user. The jsonb append and the read-back happen in one statement.
func (repo *UsersRepo) AppendExercise(ctx context.Context, id string, entry user.LogEntry) (user.User, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return user.User{}, err
	}

	var u user.User
	var rawLog []byte

	err = repo.observe("users.append_exercise", func() error {
		return repo.pool.QueryRow(ctx,
			`UPDATE users
			    SET log = log || $2::jsonb
			  WHERE id = $1
			RETURNING id, username, log`,
			id, payload,
		).Scan(&u.ID, &u.Username, &rawLog)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	if err := json.Unmarshal(rawLog, &u.Log); err != nil {
		return user.User{}, err
	}

	return u, nil
}
