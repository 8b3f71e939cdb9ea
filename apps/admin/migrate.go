package main

import (
	"github.com/shraddhaWorks/new-timelly-sub001/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	return migrateFunc(cli.db)
}
