package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/exam"
	"github.com/hocdan/guitarschool/core/schedule"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) } // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	conf     *core.Config
	migrator migrator
	classSvc schedule.Service
	examSvc  exam.Service
	in       io.Reader
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                          - run database migrations (up, down, status, redo, version...)")
	_, _ = fmt.Fprintln(cli.out, "  seed [-grades 6,7] [-per-grade N] [-retries N]  - generate conflict free classes around the existing ones")
	_, _ = fmt.Fprintln(cli.out, "                                                    (names skip taken ones: 6A exists, 6B is next; classes left without a session are not saved)")
	_, _ = fmt.Fprintln(cli.out, "  check -day D -start HH:mm -end HH:mm            - report the class a session would conflict with")
	_, _ = fmt.Fprintln(cli.out, "  export -o FILE                                  - write the timetable as an xlsx workbook")
	_, _ = fmt.Fprintln(cli.out, "  sweep                                           - auto-submit attempts of ended exams")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "seed":
		return cli.seed(ctx, args[2:])
	case "check":
		return cli.check(ctx, args[2:])
	case "export":
		return cli.export(ctx, args[2:])
	case "sweep":
		return cli.sweep(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a yes/no question on interactive terminals. Non interactive runs must pass -yes.
func (cli *commandLine) confirm(question string) error {
	if !isTerminalFunc() {
		return core.NewArgumentError("stdin is not a terminal: pass -yes to confirm")
	}
	_, _ = fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}
