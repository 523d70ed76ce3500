package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
)

func parseGrades(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var grades []int
	for _, part := range strings.Split(raw, ",") {
		g, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, core.NewArgumentError(fmt.Sprintf("invalid grade %q", part))
		}
		grades = append(grades, g)
	}
	return grades, nil
}

func (cli *commandLine) seed(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("seed")
	grades := cmd.String("grades", "", "Comma separated grades to generate classes for. Defaults to every grade.")
	perGrade := cmd.Int("per-grade", cli.conf.Seed.ClassesPerGrade, "Classes to generate per grade.")
	retries := cmd.Int("retries", cli.conf.Seed.RetryBudget, "Random placement attempts per class before giving up.")
	seed := cmd.Int64("seed", 0, "Random seed, for reproducible timetables. Defaults to the current time.")
	yes := cmd.Bool("yes", false, "Do not ask for confirmation.")
	if err := cmd.Parse(args); err != nil {
		return errHelp
	}

	opts := schedule.GenerateOptions{
		ClassesPerGrade: *perGrade,
		RetryBudget:     *retries,
	}
	var err error
	if opts.Grades, err = parseGrades(*grades); err != nil {
		return err
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	opts.Rand = rand.New(rand.NewSource(*seed))

	if !*yes {
		what := "every grade"
		if *grades != "" {
			what = "grades " + *grades
		}
		if err = cli.confirm(fmt.Sprintf("Generate %d classes per grade for %s?", *perGrade, what)); err != nil {
			return err
		}
	}

	results, err := cli.classSvc.Seed(ctx, opts)
	if err != nil {
		return err
	}
	created := 0
	for _, res := range results {
		status := "ok"
		switch {
		case res.Class.ID == "":
			status = "skipped"
		case res.Partial:
			status = fmt.Sprintf("partial %d/%d", len(res.Class.Sessions), res.Target)
		}
		if res.Class.ID != "" {
			created++
		}
		sessions := make([]string, 0, len(res.Class.Sessions))
		for _, s := range res.Class.Sessions {
			sessions = append(sessions, s.String())
		}
		_, _ = fmt.Fprintf(cli.out, "%-4s %-12s %s\n", res.Class.Name, status, strings.Join(sessions, ", "))
	}
	_, _ = fmt.Fprintf(cli.out, "%d classes created (seed %d)\n", created, *seed)
	return nil
}
