package main

import (
	"context"
	"fmt"

	"github.com/trezcool/wordwise/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.ResetPassword(context.Background(), user.ResetUserPassword{
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Printf("password of %s reset\n", usr.Email)
	return nil
}
