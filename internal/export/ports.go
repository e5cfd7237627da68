// Package export defines the outbound port for mirroring transactions to an
// external sink, such as a Google spreadsheet.
package export

import (
	"context"

	"bilancio/internal/core"
)

// Appender writes a transaction row to the export sink.
type Appender interface {
	Append(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
}
