package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core/assignment"
)

var errNotAStudent = errors.New("user is not a student")

// assign creates an assignment for the student with the given email.
func (cli *commandLine) assign(studentEmail, typ, description string, words []string) error {
	ctx := context.Background()

	student, err := cli.usrSvc.GetByEmail(ctx, studentEmail)
	if err != nil {
		return errors.Wrap(err, studentEmail)
	}
	if !student.IsStudent() {
		return errors.Wrap(errNotAStudent, studentEmail)
	}

	asmt, err := assignment.Create(ctx, cli.deps, assignment.NewAssignment{
		StudentID:   student.ID,
		Type:        typ,
		Description: description,
		Words:       words,
	})
	if err != nil {
		return err
	}
	fmt.Printf("assigned %s %q to %s (%s)\n", asmt.Type, asmt.Description, student.Email, asmt.ID)
	return nil
}
