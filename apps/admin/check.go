package main

import (
	"context"
	"fmt"

	"github.com/hocdan/guitarschool/core/schedule"
)

func (cli *commandLine) check(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("check")
	day := cmd.Int("day", -1, "Day of week, 0 (Sunday) to 6 (Saturday).")
	start := cmd.String("start", "", "Start time, HH:mm.")
	end := cmd.String("end", "", "End time, HH:mm.")
	exclude := cmd.String("exclude", "", "ID of a class to leave out of the check.")
	if err := cmd.Parse(args); err != nil {
		return errHelp
	}
	if *day < 0 || *start == "" || *end == "" {
		cmd.Usage()
		return errHelp
	}

	candidate := schedule.Session{DayOfWeek: *day, StartTime: *start, EndTime: *end}
	conflict, err := cli.classSvc.CheckConflict(ctx, candidate, *exclude)
	if err != nil {
		return err
	}
	if conflict == nil {
		_, _ = fmt.Fprintf(cli.out, "%s is free\n", candidate)
		return nil
	}
	_, _ = fmt.Fprintf(cli.out, "%s %s\n", candidate, conflict)
	return nil
}
