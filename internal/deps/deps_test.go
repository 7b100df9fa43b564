package deps_test

import (
	"testing"

	"tonearm/internal/deps"
)

func TestCheckBinaries(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Shell", Command: "sh", Description: "always present"},
		{Name: "Ghost", Command: "tonearm-definitely-not-installed", Description: "missing"},
		{Name: "Blank", Command: "  ", Description: "unconfigured"},
	})

	if len(statuses) != 3 {
		t.Fatalf("statuses = %+v", statuses)
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("ghost should be missing with detail: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("blank command: %+v", statuses[2])
	}
}

func TestAllAvailable(t *testing.T) {
	statuses := []deps.Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
	}
	if !deps.AllAvailable(statuses) {
		t.Fatal("optional misses should not fail the check")
	}
	statuses = append(statuses, deps.Status{Name: "c", Available: false})
	if deps.AllAvailable(statuses) {
		t.Fatal("required miss should fail the check")
	}
}
