package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	out    io.Writer
	db     *sql.DB
	docSvc *document.Service
}

// rolesFlag collects repeated -role flags.
type rolesFlag []string

func (r *rolesFlag) String() string { return strings.Join(*r, ",") }

func (r *rolesFlag) Set(val string) error {
	*r = append(*r, strings.TrimSpace(val))
	return nil
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  token -name NAME [-subject ID] [-email EMAIL] [-role ROLE]... - print an API token")
	_, _ = fmt.Fprintln(cli.out, "  stats - print document completion statistics")
}

// needsDB reports whether the command line given in args talks to the database.
func needsDB(args []string) bool {
	return len(args) > 1 && (args[1] == "migrate" || args[1] == "stats")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenName := tokenCmd.String("name", "", "The display name written to the document history.")
	tokenSubject := tokenCmd.String("subject", "", "The user ID (defaults to the name).")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")
	var tokenRoles rolesFlag
	tokenCmd.Var(&tokenRoles, "role", "A role of the user; repeat for several roles.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		if core.IsBlank(*tokenName) {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenName, *tokenEmail, tokenRoles)
	case "stats":
		return cli.stats()
	default:
		cli.printUsage()
		return errHelp
	}
}
