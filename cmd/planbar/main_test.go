package main

import "testing"

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://app.planbar.example , ,https://staging.planbar.example")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != "https://app.planbar.example" || got[1] != "https://staging.planbar.example" {
		t.Fatalf("unexpected entries: %v", got)
	}
	if out := splitCSV(""); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
}
