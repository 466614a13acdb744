package main

import (
	"fmt"

	"github.com/kwanjiru/eduid/core"
)

// deleteStudent removes a student by registration number along with their
// user account; card submissions go with the student record.
func (cli *commandLine) deleteStudent(regNo string) error {
	st, err := cli.stRepo.GetStudentByRegNo(core.CleanString(regNo))
	if err != nil {
		return err
	}

	if err = cli.stRepo.DeleteStudentsByID(st.ID); err != nil {
		return err
	}
	if err = cli.usrRepo.DeleteUsersByID(st.UserID); err != nil {
		return err
	}
	fmt.Printf("deleted student %s (%s)\n", st.RegNo, st.FullName)
	return nil
}
