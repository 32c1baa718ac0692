package main

import (
	"context"
	"time"

	"github.com/rawdahq/rawda/core/billing"
)

func (cli *commandLine) generate(pops []billing.Population, year, month int) error {
	ctx := context.Background()
	for _, pop := range pops {
		n, err := cli.billingSvc.GenerateForPeriod(ctx, pop, year, month)
		if err != nil {
			return err
		}
		logger.Printf("generated %d %s invoices for %d-%02d\n", n, pop, year, month)
	}
	return nil
}

func (cli *commandLine) sweep() error {
	n, err := cli.billingSvc.SweepOverdue(context.Background(), time.Now().UTC())
	if err != nil {
		return err
	}
	logger.Printf("marked %d invoices overdue\n", n)
	return nil
}
