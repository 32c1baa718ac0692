package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/student"
	dummydb "github.com/rawdahq/rawda/storage/database/dummy"
)

var studentRepo student.Repository

func setup(t *testing.T) *commandLine {
	logger = log.New(&bytes.Buffer{}, "ADMIN : ", log.LstdFlags)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	studentRepo = dummydb.NewStudentRepository(db)

	conf := core.NewConfig()
	conf.Billing.MonthlyTuition = decimal.RequireFromString("300.00")

	// no live DB; the in-memory repositories are atomic on their own
	return &commandLine{
		billingSvc: billing.NewService(nil, dummydb.NewInvoiceRepository(db), dummydb.NewDirectory(db), nil, nil, conf),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCliTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	runCliTests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCliTests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	})
}

func Test_commandLine_generate(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	if _, err := studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Aya",
		LastName:  "Doe",
		Status:    student.StatusActive,
	}); err != nil {
		t.Fatalf("creating student: %v", err)
	}

	runCliTests(t, cli, []cliTest{
		{name: "unknown population", args: []string{"generate", "-population", "aliens"}, wantErr: errHelp},
		{name: "explicit period", args: []string{"generate", "-population", "regular", "-year", "2024", "-month", "3"}},
		{name: "rerun is a no-op", args: []string{"generate", "-population", "regular", "-year", "2024", "-month", "3"}},
		{name: "defaults to both populations and current period", args: []string{"generate"}},
	})

	invs, err := cli.billingSvc.Filter(ctx, billing.QueryFilter{Population: billing.PopulationRegular, Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("filtering invoices: %v", err)
	}
	if len(invs) != 1 {
		t.Errorf("got %d invoices for 2024-03, want 1", len(invs))
	}
}

func Test_commandLine_sweep(t *testing.T) {
	cli := setup(t)

	runCliTests(t, cli, []cliTest{
		{name: "nothing to sweep", args: []string{"sweep"}},
	})
}
