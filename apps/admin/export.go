package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	exportsvc "github.com/hocdan/guitarschool/services/export"
)

func (cli *commandLine) export(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("export")
	output := cmd.String("o", "timetable.xlsx", "Output file.")
	if err := cmd.Parse(args); err != nil {
		return errHelp
	}

	classes, err := cli.classSvc.Query(ctx, nil, nil)
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	if err = exportsvc.WriteTimetable(f, classes); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing output file")
	}
	_, _ = fmt.Fprintf(cli.out, "%d classes written to %s\n", len(classes), *output)
	return nil
}
