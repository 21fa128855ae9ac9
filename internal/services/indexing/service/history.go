package service

import (
	"context"

	"indexa/internal/adapters/search/indexname"
	"indexa/internal/core/docbuild"
	"indexa/internal/platform/logger"
	"indexa/internal/platform/store"
	ptime "indexa/internal/platform/time"
)

// historyTable is the ClickHouse table indexing outcomes land in
const historyTable = "indexing_history"

// History records per document, per provider indexing outcomes.
// A nil History or one built without ClickHouse is a no-op
type History struct {
	ch  store.Clickhouse
	log logger.Logger
}

// NewHistory wires the sink. ch may be nil when ClickHouse is not configured
func NewHistory(ch store.Clickhouse) *History {
	return &History{ch: ch, log: *logger.Named("indexing.history")}
}

// Record writes one outcome row. Sink failures are logged, never surfaced
func (h *History) Record(ctx context.Context, provider, index, docID, operation string, err error) {
	if h == nil || h.ch == nil {
		return
	}
	success := uint8(1)
	msg := ""
	if err != nil {
		success = 0
		msg = err.Error()
	}
	row := []any{ptime.NowUTC(), provider, index, docID, operation, success, msg}
	if insErr := h.ch.Insert(ctx, historyTable, [][]any{row}); insErr != nil {
		h.log.Warn().Err(insErr).Str("provider", provider).Msg("history insert failed")
	}
}

// RecordBatch writes one outcome row per document of a bulk call
func (h *History) RecordBatch(
	ctx context.Context, provider string, docs []docbuild.Document, err error,
) {
	if h == nil || h.ch == nil || len(docs) == 0 {
		return
	}
	now := ptime.NowUTC()
	success := uint8(1)
	msg := ""
	if err != nil {
		success = 0
		msg = err.Error()
	}
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		rows = append(rows, []any{now, provider, indexname.For(d), id, "upsert_batch", success, msg})
	}
	if insErr := h.ch.Insert(ctx, historyTable, rows); insErr != nil {
		h.log.Warn().Err(insErr).Str("provider", provider).Int("docs", len(docs)).Msg("history insert failed")
	}
}
