package engine

import (
	"context"
	"testing"
	"time"

	"clifgo/clif"
)

func TestRegisterAndQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	tbl := clif.New("t", []string{"hospitalization_id", "vital_value"})
	tbl.Rows = []clif.Row{
		{"hospitalization_id": clif.Text("H1"), "vital_value": clif.Numeric(80)},
		{"hospitalization_id": clif.Text("H2"), "vital_value": clif.Numeric(90)},
	}
	if err := conn.Register(ctx, "rt", tbl, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	out, err := conn.Query(ctx, "rt_result", `SELECT hospitalization_id, vital_value FROM rt ORDER BY hospitalization_id`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.Rows))
	}
	v, ok := out.Rows[0].Get("vital_value").AsFloat()
	if !ok || v != 80 {
		t.Errorf("expected first row vital_value=80, got %v", out.Rows[0].Get("vital_value"))
	}
}

func TestColumnsOf(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	tbl := clif.New("t", []string{"a", "b"})
	tbl.Rows = []clif.Row{{"a": clif.Numeric(1), "b": clif.Text("x")}}
	if err := conn.Register(ctx, "co", tbl, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cols, err := conn.ColumnsOf(ctx, "co")
	if err != nil {
		t.Fatalf("ColumnsOf: %v", err)
	}
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Fatalf("ColumnsOf = %v, want [a b]", cols)
	}
}

func TestQuoteAndSanitizeHelpers(t *testing.T) {
	if got := QuoteIdent(`weird"name`); got != `"weird""name"` {
		t.Errorf("QuoteIdent = %q", got)
	}
	if got := QuoteLiteral("O'Brien"); got != "'O''Brien'" {
		t.Errorf("QuoteLiteral = %q", got)
	}
	if got := SanitizeIdent("room air"); got != "room_air" {
		t.Errorf("SanitizeIdent = %q, want room_air", got)
	}
	if got := SanitizeIdent(""); got != "_" {
		t.Errorf("SanitizeIdent(\"\") = %q, want _", got)
	}
}

func TestFormatCombo(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	got := FormatCombo("H1", ts)
	want := "H1_202403051430"
	if got != want {
		t.Errorf("FormatCombo = %q, want %q", got, want)
	}
}
