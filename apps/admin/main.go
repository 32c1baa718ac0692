package main

import (
	"log"
	"os"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/storage/database"
	sqlxrepos "github.com/rawdahq/rawda/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI; no notification sink, admin runs are operator-driven
	cli := commandLine{
		db: db,
		billingSvc: billing.NewService(
			db,
			sqlxrepos.NewInvoiceRepository(db),
			sqlxrepos.NewDirectory(db),
			nil,
			nil,
			conf,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
