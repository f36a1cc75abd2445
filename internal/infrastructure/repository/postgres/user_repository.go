package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

var userColumns = []string{"id", "username", "email", "password_hash", "image_file", "created_at"}

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	model := userTableModel{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		ImageFile:    u.ImageFile,
		CreatedAt:    u.CreatedAt,
	}
	query, args, err := qb.InsertModel("users", model, "RETURNING id")
	if err != nil {
		return user.User{}, fmt.Errorf("build insert user query: %w", err)
	}

	if err := sqlx.GetContext(ctx, r.db, &u.ID, query, args...); err != nil {
		return user.User{}, mapUserError(fmt.Errorf("insert user %s: %w", u.Username, err))
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	query, args, err := qb.Update("users").
		Set("username", u.Username).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("image_file", u.ImageFile).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", u.ID)).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build update user query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, mapUserError(fmt.Errorf("update user id=%d: %w", u.ID, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, fmt.Errorf("update user id=%d: no rows", u.ID)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("lower(email)", strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepository) getOne(ctx context.Context, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).From("users").Where(cond).Limit(1).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), true, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select(userColumns...).From("users").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

// mapUserError translates unique index violations into the domain errors.
func mapUserError(err error) error {
	switch constraint := uniqueConstraint(err); {
	case constraint == "":
		return err
	case strings.Contains(constraint, "email"):
		return fmt.Errorf("%w: %w", user.ErrEmailTaken, err)
	default:
		return fmt.Errorf("%w: %w", user.ErrUsernameTaken, err)
	}
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		ImageFile:    row.ImageFile,
		CreatedAt:    row.CreatedAt,
	}
}
