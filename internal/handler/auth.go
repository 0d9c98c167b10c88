package handler

import (
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/notify"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// register handles REGISTER <CUSTOMER|AIRLINE> <username> <password>.
// A new user is announced to every logged-in airline.
func (p *Processor) register(_ string, args []string) (result, error) {
	role, ok := model.ParseRole(arg(args, 0))
	if !ok {
		return result{}, model.InvalidArgument("role")
	}
	username, password := arg(args, 1), arg(args, 2)
	if username == "" {
		return result{}, model.InvalidArgument("username")
	}
	if len(args) < 3 {
		return result{}, model.InvalidArgument("password")
	}
	// Hashing, when enabled, happens before taking the lock.
	secret, err := p.store.Secret(password)
	if err != nil {
		return result{}, err
	}

	now := p.now()
	var res result
	err = p.store.Update(func(tx *repository.Tx) error {
		u, err := tx.Users.Create(username, secret, role)
		if err != nil {
			return err
		}
		res.notices = append(res.notices, notify.NewUserNotice(u, tx.Sessions.LiveSessionsByRole(model.RoleAirline)))
		ev := queue.NewEvent(queue.EventUserRegistered, now)
		ev.Username = u.Username
		ev.Role = u.Role.String()
		res.events = append(res.events, ev)
		return nil
	})
	if err != nil {
		return result{}, err
	}
	res.response = "REGISTERED OK"
	return res, nil
}

// login handles LOGIN <username> <password> and binds the session to
// the user.  The password check runs between two short critical
// sections; users are immutable, so the record cannot change in
// between.
func (p *Processor) login(sessionID string, args []string) (result, error) {
	username, password := arg(args, 0), arg(args, 1)

	var u model.User
	err := p.store.View(func(tx *repository.Tx) error {
		var ok bool
		if u, ok = tx.Users.Get(username); !ok {
			return model.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return result{}, err
	}
	if !p.store.Verify(u, password) {
		return result{}, model.ErrInvalidPassword
	}

	err = p.store.Update(func(tx *repository.Tx) error {
		return tx.Sessions.Bind(sessionID, u)
	})
	if err != nil {
		return result{}, err
	}
	return result{response: "LOGIN OK"}, nil
}
