// Package importer handles the one-time bulk backfill of historical
// handshakes from a plain-text file of line-separated display names.
//
// This path exists for data that predates the service, where only names were
// ever written down. It runs instead of the HTTP server and exits when done.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/karhu/shaker/internal/model"
)

// LegacyRecorder is the slice of the ledger the importer needs. Declared
// here (at the consumer) so tests can substitute a recording fake.
type LegacyRecorder interface {
	RecordLegacy(ctx context.Context, displayName string) (*model.Handshake, error)
}

// Importer feeds legacy display names into the ledger.
type Importer struct {
	ledger LegacyRecorder
	logger *slog.Logger
}

// New creates a new Importer.
func New(ledger LegacyRecorder, logger *slog.Logger) *Importer {
	return &Importer{
		ledger: ledger,
		logger: logger,
	}
}

// Run imports every non-empty line of the file at path as one legacy
// handshake.
//
// FAIL-OPEN, NOT FAIL-FAST:
// This is an offline batch job and partial success is acceptable: a line
// that fails to import is logged and skipped, and the remaining lines still
// run. Only a failure to read the file itself aborts the import. The final
// summary log gives the operator the imported/failed split to review.
func (i *Importer) Run(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	i.logger.Info("starting legacy import", slog.String("path", path))

	var imported, failed int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := scanner.Text()
		if name == "" {
			continue
		}

		if _, err := i.ledger.RecordLegacy(ctx, name); err != nil {
			i.logger.Error("unable to import legacy handshake",
				slog.String("display_name", name),
				slog.String("error", err.Error()),
			)
			failed++
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	i.logger.Info("legacy import finished",
		slog.Int("imported", imported),
		slog.Int("failed", failed),
	)
	return nil
}
