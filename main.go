// Package main is the entry point for the manga-tui application.
package main

import (
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/cmd"
	"github.com/josueBarretogit/manga-tui/config"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// leftovers of interrupted downloads
	go func() {
		for _, path := range archive.Sweep(where.Downloads(), archive.StaleAfter, time.Now()) {
			log.Infof("removed stale artifact %s", path)
		}
	}()

	cmd.Execute()
}
