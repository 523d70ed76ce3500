package main

import (
	"context"
	"fmt"
	"time"
)

func (cli *commandLine) sweep(ctx context.Context) error {
	n, err := cli.examSvc.AutoSubmitExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d attempts auto-submitted\n", n)
	return nil
}
