package vaso

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
)

// nearestWeight queries the already-registered vitals temp table for every
// observation of weightCategory and returns them grouped by
// hospitalization_id, each group sorted by time ascending. Picking the
// observation closest to a given admin timestamp is done per row in Go by
// nearestWeightKg.
func nearestWeight(ctx context.Context, conn *engine.Conn, vitalsTable, weightCategoryCol, weightValueCol, weightCategory string) (map[string]*clif.Table, error) {
	query := fmt.Sprintf(`
		SELECT hospitalization_id, %s AS weight_time, %s AS weight_kg
		FROM %s
		WHERE %s = %s
		ORDER BY hospitalization_id, weight_time`,
		engine.QuoteIdent(weightTimeCol(vitalsTable)), engine.QuoteIdent(weightValueCol),
		engine.QuoteIdent(vitalsTable),
		engine.QuoteIdent(weightCategoryCol), engine.QuoteLiteral(weightCategory),
	)

	result, err := conn.Query(ctx, "weight_observations", query)
	if err != nil {
		return nil, fmt.Errorf("query weight observations: %w", err)
	}

	byHosp := map[string]*clif.Table{}
	for _, row := range result.Rows {
		hospID := row.Get("hospitalization_id").AsString()
		t, ok := byHosp[hospID]
		if !ok {
			t = clif.New("weights_"+hospID, []string{"weight_time", "weight_kg"})
			byHosp[hospID] = t
		}
		t.Rows = append(t.Rows, row)
	}
	return byHosp, nil
}

func weightTimeCol(_ string) string { return "recorded_dttm" }

// nearestWeightKg scans a sorted-by-time weight observation list for a
// hospitalization and returns the value closest to at, ties toward the
// earlier observation (the first of two equidistant candidates, since the
// list is time-sorted ascending).
func nearestWeightKg(weights *clif.Table, at clif.Value, log *zerolog.Logger) (float64, bool) {
	if weights == nil || len(weights.Rows) == 0 {
		return 0, false
	}
	atTime, ok := at.AsTime()
	if !ok {
		return 0, false
	}

	var best float64
	var bestDelta time.Duration
	found := false
	for _, row := range weights.Rows {
		wt, ok := row.Get("weight_time").AsTime()
		if !ok {
			continue
		}
		wv, ok := row.Get("weight_kg").AsFloat()
		if !ok {
			continue
		}
		delta := atTime.Sub(wt)
		if delta < 0 {
			delta = -delta
		}
		if !found || delta < bestDelta {
			best, bestDelta, found = wv, delta, true
		}
	}
	return best, found
}
