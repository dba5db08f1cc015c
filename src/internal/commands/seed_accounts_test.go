package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

func TestLoadChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	content := `accounts:
  - code: "1000"
    name: Cash on Hand
    type: asset
  - code: "2000"
    name: Accounts Payable
    type: LIABILITY
    allowManualJournal: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write chart: %v", err)
	}

	chart, err := loadChart(path)
	if err != nil {
		t.Fatalf("load chart: %v", err)
	}
	if len(chart) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(chart))
	}

	first, err := chart[0].toDomain()
	if err != nil {
		t.Fatalf("first account: %v", err)
	}
	if first.Type != domain.AccountTypeAsset || !first.AllowManualJournal {
		t.Fatalf("unexpected first account: %+v", first)
	}

	second, err := chart[1].toDomain()
	if err != nil {
		t.Fatalf("second account: %v", err)
	}
	if second.Type != domain.AccountTypeLiability || second.AllowManualJournal {
		t.Fatalf("unexpected second account: %+v", second)
	}
}

func TestLoadChartEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	if err := os.WriteFile(path, []byte("accounts: []\n"), 0o644); err != nil {
		t.Fatalf("write chart: %v", err)
	}

	if _, err := loadChart(path); err == nil {
		t.Fatal("expected error for empty chart")
	}
}

func TestDefaultChartIsWellFormed(t *testing.T) {
	codes := make(map[string]bool)
	for _, entry := range defaultChart() {
		account, err := entry.toDomain()
		if err != nil {
			t.Fatalf("account %s: %v", entry.Code, err)
		}
		if codes[account.Code] {
			t.Fatalf("duplicate code %s", account.Code)
		}
		codes[account.Code] = true
	}

	// Subledger accounts start closed to manual journals.
	for _, entry := range defaultChart() {
		account, _ := entry.toDomain()
		switch account.Code {
		case "1200", "1300", "2000":
			if account.AllowManualJournal {
				t.Fatalf("expected control account %s to refuse manual journals", account.Code)
			}
		}
	}
}

func TestChartAccountRejectsUnknownType(t *testing.T) {
	_, err := chartAccount{Code: "9000", Name: "Mystery", Type: "CONTRA"}.toDomain()
	if err == nil {
		t.Fatal("expected error for unknown account type")
	}
}
