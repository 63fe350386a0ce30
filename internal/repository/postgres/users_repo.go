package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/models"
	"github.com/baharkarakas/typing-backend/internal/repository"
)

type usersRepo struct{ q db.DBTX }

func NewUsers(q db.DBTX) repository.Users {
	return &usersRepo{q: q}
}

const selectUser = `SELECT u.id, u.name, u.email, u.password_hash, u.role, u.is_verified, u.is_blocked, u.registered, u.best_cpm,
       COALESCE(string_agg(c.id::text, ',' ORDER BY c.issued_at), '')
  FROM users u
  LEFT JOIN certificates c ON c.user_id = u.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (models.User, error) {
	var u models.User
	var certs string
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified, &u.IsBlocked, &u.Registered, &u.BestCPM, &certs)
	if err != nil {
		return models.User{}, err
	}
	u.Certificates = []string{}
	if certs != "" {
		u.Certificates = strings.Split(certs, ",")
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING registered, best_cpm`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsVerified,
	).Scan(&u.Registered, &u.BestCPM)
	if err != nil {
		return mapErr(err)
	}
	u.Certificates = []string{}
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, selectUser+`
 WHERE u.id = $1
 GROUP BY u.id`, id))
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, selectUser+`
 WHERE u.email = $1
 GROUP BY u.id`, email))
	return u, mapErr(err)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.q.QueryContext(ctx, selectUser+`
 GROUP BY u.id
 ORDER BY u.registered DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

func (r *usersRepo) Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	var got string
	err := r.q.QueryRowContext(ctx,
		`UPDATE users
		    SET name = COALESCE($2, name),
		        email = COALESCE($3, email),
		        is_verified = COALESCE($4, is_verified)
		  WHERE id = $1
		  RETURNING id`,
		id, upd.Name, upd.Email, upd.IsVerified,
	).Scan(&got)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, id)
}

func (r *usersRepo) SetBlocked(ctx context.Context, id string, blocked bool) (models.User, error) {
	var got string
	err := r.q.QueryRowContext(ctx,
		`UPDATE users SET is_blocked = $2 WHERE id = $1 RETURNING id`, id, blocked,
	).Scan(&got)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, id)
}

func (r *usersRepo) SetRole(ctx context.Context, id, role string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return mapErr(err)
	}
	return affectedOne(res)
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affectedOne(res)
}

func (r *usersRepo) BestCPM(ctx context.Context, id string) (float64, error) {
	var best float64
	err := r.q.QueryRowContext(ctx, `SELECT best_cpm FROM users WHERE id = $1`, id).Scan(&best)
	return best, mapErr(err)
}

func (r *usersRepo) RaiseBestCPM(ctx context.Context, id string, cpm float64) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET best_cpm = $2 WHERE id = $1 AND best_cpm < $2`, id, cpm)
	if err != nil {
		return false, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapErr(err)
	}
	return n == 1, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affectedOne(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
