package main

import (
	"context"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.getUser(ctx, uname, email)
	exists := err == nil
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	} else {
		usr.IsActive = &active
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}

func (cli *commandLine) getUser(ctx context.Context, uname, email string) (user.User, error) {
	if uname != "" {
		if usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname); err != user.ErrNotFound {
			return usr, err
		}
	}
	if email != "" {
		return cli.usrRepo.GetUserByUsernameOrEmail(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}
