package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/psychoder05/chartworm-backend/cmd/csvimport"
	"github.com/psychoder05/chartworm-backend/src/database"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Chartworm CMD"
	app.Usage = "The chartworm command line interface"

	app.Commands = []cli.Command{
		importCSVCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var importCSVCMD = cli.Command{
	Name:      "importcsv",
	Usage:     "bulk import stocks from a CSV file",
	Action:    importCSVAction,
	ArgsUsage: "",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "file",
			Usage: "path to the CSV file to import",
		},
	},
	Description: `Load a stock CSV into the database, enriched with live quotes`,
}

func importCSVAction(c *cli.Context) error {

	logrus.Info("Starting CSV import CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	job := &csvimport.CSVImport{
		Path: c.String("file"),
		Log:  logrus.WithField("cmd", "importcsv"),
	}

	if err := job.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
