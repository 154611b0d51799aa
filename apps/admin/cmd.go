package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/events"
	"github.com/trezcool/academia/core/monitoring"
	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/storage/database"
)

var (
	// mockables
	readPasswordFunc = term.ReadPassword
	migrateFunc      = database.Migrate

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	validate *validator.Validate
	usrSvc   user.Service
	authzSvc authz.Service
	evSvc    events.Service
	monSvc   monitoring.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-username USERNAME] [-staff] - create a user")
	fmt.Fprintln(cli.out, "  create_roles - create or update the default roles and capabilities")
	fmt.Fprintln(cli.out, "  sync_events -org ORGANIZATION_ID - pull an organization's events from eventbrite")
	fmt.Fprintln(cli.out, "  run_checks - check every monitored endpoint")
	fmt.Fprintln(cli.out, "  export_csv -academy ACADEMY_ID -source events|answers - export a CSV download")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserStaff := addUserCmd.Bool("staff", false, "Whether the user is staff.")

	syncEventsCmd := flag.NewFlagSet("sync_events", flag.ExitOnError)
	syncEventsOrg := syncEventsCmd.Int64("org", 0, "The organization ID.")

	exportCmd := flag.NewFlagSet("export_csv", flag.ExitOnError)
	exportAcademy := exportCmd.Int64("academy", 0, "The academy ID.")
	exportSource := exportCmd.String("source", "", "What to export: events or answers.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserStaff)

	case "create_roles":
		return cli.createRoles()

	case "sync_events":
		if err := syncEventsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *syncEventsOrg == 0 {
			syncEventsCmd.Usage()
			return errHelp
		}
		return cli.syncEvents(*syncEventsOrg)

	case "run_checks":
		return cli.runChecks()

	case "export_csv":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportAcademy == 0 || *exportSource == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportCSV(*exportAcademy, *exportSource)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
