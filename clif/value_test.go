package clif

import (
	"testing"
	"time"
)

func TestValueAsFloat(t *testing.T) {
	if v, ok := Numeric(3.5).AsFloat(); !ok || v != 3.5 {
		t.Fatalf("Numeric(3.5).AsFloat() = %v, %v", v, ok)
	}
	if v, ok := Boolean(true).AsFloat(); !ok || v != 1 {
		t.Fatalf("Boolean(true).AsFloat() = %v, %v", v, ok)
	}
	if v, ok := Boolean(false).AsFloat(); !ok || v != 0 {
		t.Fatalf("Boolean(false).AsFloat() = %v, %v", v, ok)
	}
	if _, ok := Text("x").AsFloat(); ok {
		t.Fatalf("Text.AsFloat() should not be ok")
	}
	if _, ok := Null.AsFloat(); ok {
		t.Fatalf("Null.AsFloat() should not be ok")
	}
}

func TestValueIsNull(t *testing.T) {
	if !Null.IsNull() {
		t.Fatalf("Null.IsNull() should be true")
	}
	if Numeric(0).IsNull() {
		t.Fatalf("Numeric(0).IsNull() should be false")
	}
}

func TestValueAsString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, ""},
		{Numeric(42), "42"},
		{Numeric(1.5), "1.5"},
		{Text("hi"), "hi"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
	}
	for _, c := range cases {
		if got := c.v.AsString(); got != c.want {
			t.Errorf("AsString() = %q, want %q", got, c.want)
		}
	}
}

func TestValueAsTime(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	v := Timestamp(ts)
	got, ok := v.AsTime()
	if !ok || !got.Equal(ts) {
		t.Fatalf("AsTime() = %v, %v, want %v, true", got, ok, ts)
	}
	if _, ok := Numeric(1).AsTime(); ok {
		t.Fatalf("Numeric.AsTime() should not be ok")
	}
}
