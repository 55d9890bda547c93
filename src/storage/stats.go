package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetStats counts conversations and messages for the statistics display. This
// is a best-effort read: on any underlying failure it logs and returns zeroed
// values instead of propagating the error, so a stats widget can never take
// down the settings screen.
func GetStats(ctx context.Context, db sqlscan.Querier) Stats {
	var convCount, msgCount int

	if err := sqlscan.Get(ctx, db, &convCount, `SELECT COUNT(*) FROM conversations`); err != nil {
		slog.Warn("failed to count conversations, reporting zero", "error", err)
		return zeroStats()
	}
	if err := sqlscan.Get(ctx, db, &msgCount, `SELECT COUNT(*) FROM conversation_messages`); err != nil {
		slog.Warn("failed to count messages, reporting zero", "error", err)
		return zeroStats()
	}

	return Stats{
		ConversationCount: convCount,
		MessageCount:      msgCount,
		TotalSize:         fmt.Sprintf("%d items", convCount+msgCount),
	}
}

func zeroStats() Stats {
	return Stats{TotalSize: "0 items"}
}
