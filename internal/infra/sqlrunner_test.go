package infra

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 0b6c1f7e-2f1d-4b55-9c1e-7a0d3c2b9f10\nselect 1;\n"
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if marker != "0b6c1f7e-2f1d-4b55-9c1e-7a0d3c2b9f10" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsMissingMarker(t *testing.T) {
	for _, q := range []string{"", "select 1;", "--sql not-a-uuid\nselect 1;"} {
		if _, _, err := extractMarker(q); err == nil {
			t.Fatalf("extractMarker(%q) expected error", q)
		}
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatal("IsNoRows(pgx.ErrNoRows) = false")
	}
	if !IsNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)) {
		t.Fatal("IsNoRows(wrapped) = false")
	}
	if IsNoRows(errors.New("boom")) {
		t.Fatal("IsNoRows(other) = true")
	}
}
