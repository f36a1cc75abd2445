package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
)

type UserRepository struct {
	acc accessor
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	err := r.acc.write(func(d *dataset) error {
		if err := checkUnique(d.users, u); err != nil {
			return err
		}
		u.ID = d.nextID("users")
		d.users = append(d.users, u)
		return nil
	})
	return u, err
}

func (r *UserRepository) Update(_ context.Context, u user.User) (user.User, error) {
	err := r.acc.write(func(d *dataset) error {
		if err := checkUnique(d.users, u); err != nil {
			return err
		}
		for i := range d.users {
			if d.users[i].ID == u.ID {
				u.CreatedAt = d.users[i].CreatedAt
				d.users[i] = u
				return nil
			}
		}
		return fmt.Errorf("user %d not found", u.ID)
	})
	return u, err
}

func checkUnique(users []user.User, u user.User) error {
	for _, existing := range users {
		if existing.ID == u.ID {
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return user.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	return r.find(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) find(pred func(user.User) bool) (user.User, bool, error) {
	var (
		out   user.User
		found bool
	)
	r.acc.read(func(d *dataset) {
		for _, u := range d.users {
			if pred(u) {
				out, found = u, true
				return
			}
		}
	})
	return out, found, nil
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	r.acc.read(func(d *dataset) {
		out = append([]user.User(nil), d.users...)
	})
	return out, nil
}
