package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-06-03")
	if err != nil {
		t.Fatalf("date-only parse failed: %v", err)
	}
	want := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parsed %v, want %v", got, want)
	}

	got, err = ParseDate("2026-06-03T14:30:00Z")
	if err != nil {
		t.Fatalf("RFC3339 parse failed: %v", err)
	}
	if got.Hour() != 14 {
		t.Errorf("parsed hour %d, want 14", got.Hour())
	}

	if _, err := ParseDate("03/06/2026"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestParseDateParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?start_date=2026-06-03", nil)
	got, err := ParseDateParam(r, "start_date")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got == nil || got.Day() != 3 {
		t.Errorf("parsed %v, want June 3", got)
	}

	got, err = ParseDateParam(r, "end_date")
	if err != nil {
		t.Fatalf("absent param should not error: %v", err)
	}
	if got != nil {
		t.Errorf("absent param should be nil, got %v", got)
	}

	r = httptest.NewRequest("GET", "/?start_date=garbage", nil)
	if _, err := ParseDateParam(r, "start_date"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

func TestParsePageParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	page, err := ParsePageParam(r)
	if err != nil || page != 1 {
		t.Errorf("absent page should default to 1, got %d err %v", page, err)
	}

	r = httptest.NewRequest("GET", "/?page=4", nil)
	page, err = ParsePageParam(r)
	if err != nil || page != 4 {
		t.Errorf("page=4 parsed as %d err %v", page, err)
	}

	for _, bad := range []string{"0", "-1", "two"} {
		r = httptest.NewRequest("GET", "/?page="+bad, nil)
		if _, err := ParsePageParam(r); err == nil {
			t.Errorf("page=%s should be rejected", bad)
		}
	}
}

func TestParsePriceParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?min_price=49.50", nil)
	price, err := ParsePriceParam(r, "min_price")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if price == nil || *price != 49.50 {
		t.Errorf("parsed %v, want 49.50", price)
	}

	price, err = ParsePriceParam(r, "max_price")
	if err != nil || price != nil {
		t.Errorf("absent param should be nil without error, got %v err %v", price, err)
	}

	r = httptest.NewRequest("GET", "/?min_price=-5", nil)
	if _, err := ParsePriceParam(r, "min_price"); err == nil {
		t.Error("negative price should be rejected")
	}
}
