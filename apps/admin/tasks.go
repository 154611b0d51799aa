package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core/monitoring"
)

func (cli *commandLine) createRoles() error {
	if err := cli.authzSvc.SeedDefaults(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Roles created")
	return nil
}

func (cli *commandLine) syncEvents(orgID int64) error {
	if err := cli.evSvc.SyncOrganization(context.Background(), orgID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Events of organization %d synced\n", orgID)
	return nil
}

func (cli *commandLine) runChecks() error {
	n, err := cli.monSvc.RunChecks(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d endpoints checked\n", n)
	return nil
}

func (cli *commandLine) exportCSV(academyID int64, source string) error {
	nd := monitoring.NewDownload{Source: source}
	if err := cli.validate.Struct(nd); err != nil {
		return err
	}
	ctx := context.Background()
	dl, err := cli.monSvc.ExportCSV(ctx, academyID, nd)
	if err != nil {
		return err
	}
	if dl, err = cli.monSvc.GetDownload(ctx, academyID, dl.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Download %d (%s): %s\n", dl.ID, dl.Name, dl.Status)
	return nil
}
