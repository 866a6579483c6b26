package csvimport

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/connectors"
	"github.com/psychoder05/chartworm-backend/src/importer"
	"github.com/psychoder05/chartworm-backend/src/repository"
)

// CSVImport is the offline bulk-ingestion job: it reads a stock CSV from
// disk and loads it into the stocks table, enriching rows with live quotes.
type CSVImport struct {
	Path string
	Log  *logrus.Entry
}

func (c *CSVImport) Start() error {
	if c.Path == "" {
		return fmt.Errorf("csv path not set")
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.Path, err)
	}
	defer f.Close()

	quotes := connectors.NewYahooClient(connectors.GetConfig())
	imp := importer.NewStockImporter(repository.NewStockRepository(), quotes)

	rows, err := imp.ImportCSV(context.Background(), f)
	if err != nil {
		return err
	}

	c.Log.WithField("rows", rows).Info("CSV import finished")
	return nil
}
