package store

import (
	"context"
	"fmt"

	"github.com/roach88/plenar/internal/joinkey"
)

// backfillSQL copies period and number from the owning protocol and
// derives match_ag in the same pass. Items without a protocol row are
// left untouched; a NULL item_order yields a NULL match_ag.
var backfillSQL = `
	UPDATE agenda_item
	SET legislature_period = p.legislature_period,
	    number = p.number,
	    match_ag = ` + joinkey.SQLExpr("p.legislature_period", "p.number", "agenda_item.item_order") + `
	FROM protocol AS p
	WHERE agenda_item.protocol_id = p.id
`

// BackfillAgendaItems fills the derived agenda_item columns from the
// protocol table in one statement. It recomputes every linked row, so
// running it again over the same data yields the same result.
// Returns the number of rows touched.
func (s *Store) BackfillAgendaItems(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, backfillSQL)
	if err != nil {
		return 0, fmt.Errorf("backfill agenda items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("backfill agenda items: rows affected: %w", err)
	}
	return n, nil
}
