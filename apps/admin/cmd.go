package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/student"
	"github.com/kwanjiru/eduid/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	db      *sqlx.DB
	usrRepo user.Repository
	stRepo  student.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createadmin -username USERNAME -email EMAIL - create (or reset) an admin account")
	fmt.Println("  migrate COMMAND [args] - run a database migration command")
	fmt.Println("  purge -days DAYS - remove rejected submissions older than DAYS days")
	fmt.Println("  delstudent -regno REGNO - delete a student, their account and submissions")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email address.")

	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	purgeDays := purgeCmd.Int("days", 30, "Remove rejected submissions reviewed more than this many days ago.")

	delStudentCmd := flag.NewFlagSet("delstudent", flag.ExitOnError)
	delStudentRegNo := delStudentCmd.String("regno", "", "The registration number of the student to delete.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createAdminUname, *createAdminEmail, string(pwd))
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "purge":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *purgeDays < 1 {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.purge(*purgeDays)
	case "delstudent":
		if err := delStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *delStudentRegNo == "" {
			delStudentCmd.Usage()
			return errHelp
		}
		return cli.deleteStudent(*delStudentRegNo)
	default:
		cli.printUsage()
		return errHelp
	}
}
