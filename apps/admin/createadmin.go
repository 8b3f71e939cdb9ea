package main

import (
	"context"

	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

func (cli *commandLine) createAdmin(name, uname, email, schoolID, pwd string) error {
	_, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		SchoolID:        schoolID,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           []string{user.RoleAdminOwner},
	})
	return err
}
