package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	uu := user.UpdateUser{Password: pwd, PasswordConfirm: pwd}
	if err := uu.Validate(cli.validate); err != nil {
		return err
	}
	if _, err := cli.usrSvc.Update(ctx, usr, uu); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password of %s updated\n", usr.Email)
	return nil
}
