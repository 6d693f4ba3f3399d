package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
	"github.com/worksite/progress/storage/database"
	sqlxrepos "github.com/worksite/progress/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	sdb := sqlx.NewDb(db, conf.Database.Engine)
	prjSvc := project.NewService(
		sqlxrepos.NewProjectRepository(sdb),
		sqlxrepos.NewSectionRepository(sdb),
		sqlxrepos.NewItemRepository(sdb),
		sqlxrepos.NewEntryRepository(sdb),
		core.NopLogger{},
	)

	cli := commandLine{db: db, prjSvc: prjSvc}
	if err = cli.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
