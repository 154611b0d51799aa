package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core/user"
)

// addUser creates an active user.User; staff users get access to the admin endpoints.
func (cli *commandLine) addUser(uname, email, pwd string, isStaff bool) error {
	nu := user.NewUser{
		Username:        uname,
		Email:           email,
		IsStaff:         isStaff,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "User %s created (id: %d)\n", usr.Email, usr.ID)
	return nil
}
