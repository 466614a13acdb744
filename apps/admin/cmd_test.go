package main

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
	dummydb "github.com/kwanjiru/eduid/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return &commandLine{
		conf: &core.Config{
			WorkDir:  t.TempDir(),
			Database: core.DatabaseConfig{Engine: "postgres"},
		},
		db:      &sqlx.DB{},
		usrRepo: dummydb.NewUserRepository(db),
		stRepo:  dummydb.NewStudentRepository(db),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "missing email", args: []string{"createadmin", "-username", "boss"}, wantErr: errHelp},
		{name: "flags but no password", args: []string{"createadmin", "-username", "boss", "-email", "boss@test.cd"}, wantErr: errHelp},
		{name: "create admin", args: []string{"createadmin", "-username", "boss", "-email", "boss@test.cd"}, extra: extra{pwd: "s3cr3t"}},
		{name: "reset existing admin", args: []string{"createadmin", "-username", "boss", "-email", "boss@test.cd"}, extra: extra{pwd: "n3w-s3cr3t"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				usr, err := cli.usrRepo.GetUserByUsernameOrEmail("boss")
				if err != nil {
					t.Fatalf("GetUserByUsernameOrEmail() failed: %v", err)
				}
				if !usr.IsAdmin() {
					t.Error("created user is not an admin")
				}
				if !usr.IsActive {
					t.Error("created user is not active")
				}
				if err := usr.CheckPassword(tt.extra.(extra).pwd); err != nil {
					t.Error("failed to set new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "down", "redo", "reset", "status", "version": // pass
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, extra: `"lol": no such command`},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if wantStr, ok := tt.extra.(string); ok {
				if err.Error() != wantStr {
					t.Errorf("cli.run() error = %q, want %q", err.Error(), wantStr)
				}
			} else {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_deleteStudent(t *testing.T) {
	cli := setup(t)

	usr, err := cli.usrRepo.CreateUser(user.User{Name: "Jane", Username: "jane", Email: "jane@test.cd", Role: user.RoleStudent})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	st, err := cli.stRepo.CreateStudent(student.Student{UserID: usr.ID, RegNo: "SCH-2024-001", FullName: "Jane Mwangi"})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	sid, err := cli.stRepo.CreateSchoolID(student.SchoolID{StudentID: st.ID, Status: student.StatusPending})
	if err != nil {
		t.Fatalf("CreateSchoolID() failed: %v", err)
	}

	tests := []cliTest{
		{name: "missing regno", args: []string{"delstudent"}, wantErr: errHelp},
		{name: "unknown regno", args: []string{"delstudent", "-regno", "NOPE"}, wantErr: student.ErrNotFound},
		{name: "delete student", args: []string{"delstudent", "-regno", "SCH-2024-001"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if _, err := cli.stRepo.GetStudentByRegNo("SCH-2024-001"); err != student.ErrNotFound {
				t.Error("student record was not deleted")
			}
			if _, err := cli.stRepo.GetSchoolIDByID(sid.ID); err != student.ErrSubmissionNotFound {
				t.Error("student's submissions were not deleted")
			}
			if _, err := cli.usrRepo.GetUserByID(usr.ID); err != user.ErrNotFound {
				t.Error("user account was not deleted")
			}
		})
	}
}

func Test_commandLine_purge(t *testing.T) {
	cli := setup(t)

	now := time.Now().UTC()
	seed := func(status string, reviewedAt time.Time) student.SchoolID {
		sid, err := cli.stRepo.CreateSchoolID(student.SchoolID{
			StudentID:   1,
			Status:      status,
			SubmittedAt: reviewedAt.Add(-24 * time.Hour),
			ReviewedAt:  reviewedAt,
		})
		if err != nil {
			t.Fatalf("CreateSchoolID() failed: %v", err)
		}
		return sid
	}
	oldRejected := seed(student.StatusRejected, now.Add(-40*24*time.Hour))
	freshRejected := seed(student.StatusRejected, now.Add(-2*24*time.Hour))
	oldApproved := seed(student.StatusApproved, now.Add(-40*24*time.Hour))

	tests := []cliTest{
		{name: "invalid days", args: []string{"purge", "-days", "0"}, wantErr: errHelp},
		{name: "purge old rejected", args: []string{"purge", "-days", "30"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if _, err := cli.stRepo.GetSchoolIDByID(oldRejected.ID); err != student.ErrSubmissionNotFound {
				t.Error("old rejected submission was not purged")
			}
			if _, err := cli.stRepo.GetSchoolIDByID(freshRejected.ID); err != nil {
				t.Error("recently rejected submission should be kept")
			}
			if _, err := cli.stRepo.GetSchoolIDByID(oldApproved.ID); err != nil {
				t.Error("approved submission should be kept")
			}
		})
	}
}
