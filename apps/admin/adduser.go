package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
)

var errUnknownRole = errors.New("unknown role")

// addUser creates an active user.User with the given role. Admins get every role.
func (cli *commandLine) addUser(name, email, roleName, pwd string) error {
	role, ok := user.RoleFromName(roleName)
	if !ok {
		return errors.Wrap(errUnknownRole, roleName)
	}
	roles := []string{role}
	if role == user.RoleAdmin {
		roles = user.AllRoles
	}

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s <%s> (%s)\n", usr.Name, usr.Email, usr.ID)
	return nil
}

// printable flattens validation errors for the terminal.
func printable(err error) error {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 1 {
		msg := vErr.Error()
		for _, f := range vErr.Fields[1:] {
			msg += "; " + f.Field + ": " + f.Error
		}
		return errors.New(msg)
	}
	return err
}
