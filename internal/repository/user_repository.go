package repository

import (
	"strings"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// UserRepo is the user half of the directory.  Users are keyed by
// username and are never updated or removed once created.
//
// Password hashing is split from the map operations: Secret and Verify
// touch no repository state, so callers run them outside the store lock
// and keep bcrypt work out of the critical section.
type UserRepo struct {
	byName map[string]model.User
	order  []string
	cost   int // bcrypt cost; 0 stores the secret as given
}

// NewUserRepo returns an empty user directory.  A positive bcryptCost
// makes Secret produce bcrypt hashes instead of returning the password.
func NewUserRepo(bcryptCost int) *UserRepo {
	return &UserRepo{byName: make(map[string]model.User), cost: bcryptCost}
}

// Secret converts a password into the form stored on the user.
func (r *UserRepo) Secret(password string) (string, error) {
	if r.cost <= 0 {
		return password, nil
	}
	return utils.HashPassword(password, r.cost)
}

// Verify checks password against the user's stored secret.
func (r *UserRepo) Verify(u model.User, password string) bool {
	if r.cost > 0 {
		return utils.VerifyPassword(u.Secret, password)
	}
	return utils.EqualSecret(u.Secret, password)
}

// Create inserts a user with a secret obtained from Secret.  It fails
// with ErrUsernameAlreadyExists when the username is taken, leaving the
// directory unchanged.
func (r *UserRepo) Create(username, secret string, role model.Role) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, model.InvalidArgument("username")
	}
	if _, ok := r.byName[username]; ok {
		return model.User{}, model.ErrUsernameAlreadyExists
	}
	u := model.User{Username: username, Secret: secret, Role: role}
	r.byName[username] = u
	r.order = append(r.order, username)
	return u, nil
}

// Get fetches a user by username.
func (r *UserRepo) Get(username string) (model.User, bool) {
	u, ok := r.byName[username]
	return u, ok
}

// Authenticate looks the user up and checks the password.
func (r *UserRepo) Authenticate(username, password string) (model.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	if !r.Verify(u, password) {
		return model.User{}, model.ErrInvalidPassword
	}
	return u, nil
}

// Len returns the number of registered users.
func (r *UserRepo) Len() int { return len(r.order) }
