package main

import (
	"fmt"

	echoapi "github.com/trezcool/dossiers/apps/api/echo"
	"github.com/trezcool/dossiers/core"
)

// token prints a signed API token for the given identity.
func (cli *commandLine) token(subject, name, email string, roles []string) error {
	name = core.CleanString(name)
	if subject == "" {
		subject = name
	}
	claims := echoapi.NewClaims(cli.conf, subject, name, core.CleanString(email, true /* lower */), roles...)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}
