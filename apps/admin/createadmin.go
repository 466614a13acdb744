package main

import (
	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/user"
)

// createAdmin creates an active admin account, or promotes and resets an
// existing account matching the username or email.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := user.NowFunc()

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Role = user.RoleAdmin
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	active := true
	if usr.ID == 0 {
		usr.IsActive = true
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr, &active)
	return err
}
