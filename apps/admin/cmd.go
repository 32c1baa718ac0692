package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/rawdahq/rawda/core/billing"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	billingSvc *billing.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status...)")
	fmt.Println("  generate [-population regular|extra_course] [-year YYYY] [-month 1-12] - generate monthly invoices")
	fmt.Println("  sweep - mark unpaid invoices past their due date as overdue")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	now := time.Now().UTC()
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	generatePop := generateCmd.String("population", "", "Population to bill; both when omitted.")
	generateYear := generateCmd.Int("year", now.Year(), "Billed year.")
	generateMonth := generateCmd.Int("month", int(now.Month()), "Billed month (1-12).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "generate":
		if err := generateCmd.Parse(args[2:]); err != nil {
			return err
		}
		pops := billing.Populations
		if *generatePop != "" {
			pop := billing.Population(*generatePop)
			if !pop.Valid() {
				generateCmd.Usage()
				return errHelp
			}
			pops = []billing.Population{pop}
		}
		return cli.generate(pops, *generateYear, *generateMonth)
	case "sweep":
		return cli.sweep()
	default:
		cli.printUsage()
		return errHelp
	}
}
