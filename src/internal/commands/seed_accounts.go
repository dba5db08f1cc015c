package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sente-books/ledger-service/src/internal/adapter/repository/implementations"
	"github.com/sente-books/ledger-service/src/internal/config"
	"github.com/sente-books/ledger-service/src/internal/domain"
)

type chartFile struct {
	Accounts []chartAccount `yaml:"accounts"`
}

type chartAccount struct {
	Code               string `yaml:"code"`
	Name               string `yaml:"name"`
	Type               string `yaml:"type"`
	AllowManualJournal *bool  `yaml:"allowManualJournal"`
}

func newSeedAccountsCommand() *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "seed-accounts",
		Short: "Create chart-of-accounts entries from a YAML file",
		Long: "Creates any missing accounts from the given chart file, or from the " +
			"built-in small business chart when no file is given. Existing account " +
			"codes are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			chart := defaultChart()
			if chartPath != "" {
				loaded, err := loadChart(chartPath)
				if err != nil {
					return err
				}
				chart = loaded
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			db, err := implementations.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := implementations.NewAccountRepository(db)

			created, skipped := 0, 0
			for _, entry := range chart {
				account, err := entry.toDomain()
				if err != nil {
					return err
				}

				if _, err := repo.Create(ctx, account); err != nil {
					if errors.Is(err, domain.ErrDuplicateAccountCode) {
						skipped++
						continue
					}
					return fmt.Errorf("creating account %s: %w", account.Code, err)
				}
				created++
			}

			fmt.Printf("seeded accounts: %d created, %d already present\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "path to a YAML chart of accounts")

	return cmd
}

func loadChart(path string) ([]chartAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart file: %w", err)
	}

	var file chartFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing chart file: %w", err)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("chart file %s lists no accounts", path)
	}

	return file.Accounts, nil
}

func (a chartAccount) toDomain() (domain.Account, error) {
	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(a.Type)))
	if !accountType.Valid() {
		return domain.Account{}, fmt.Errorf("account %s has unknown type %q", a.Code, a.Type)
	}

	allowManualJournal := true
	if a.AllowManualJournal != nil {
		allowManualJournal = *a.AllowManualJournal
	}

	return domain.Account{
		Code:               strings.TrimSpace(a.Code),
		Name:               strings.TrimSpace(a.Name),
		Type:               accountType,
		AllowManualJournal: allowManualJournal,
	}, nil
}

func boolPtr(v bool) *bool { return &v }

// defaultChart is a minimal small business chart. Accounts managed by
// subledgers (receivables, payables, inventory) are closed to manual
// journals from the start.
func defaultChart() []chartAccount {
	return []chartAccount{
		{Code: "1000", Name: "Cash on Hand", Type: "ASSET"},
		{Code: "1010", Name: "Bank Account", Type: "ASSET"},
		{Code: "1100", Name: "Mobile Money", Type: "ASSET"},
		{Code: "1200", Name: "Accounts Receivable", Type: "ASSET", AllowManualJournal: boolPtr(false)},
		{Code: "1300", Name: "Inventory", Type: "ASSET", AllowManualJournal: boolPtr(false)},
		{Code: "1400", Name: "VAT Receivable", Type: "ASSET"},
		{Code: "2000", Name: "Accounts Payable", Type: "LIABILITY", AllowManualJournal: boolPtr(false)},
		{Code: "2100", Name: "VAT Payable", Type: "LIABILITY"},
		{Code: "2200", Name: "Withholding Tax Payable", Type: "LIABILITY"},
		{Code: "3000", Name: "Owner's Equity", Type: "EQUITY"},
		{Code: "3100", Name: "Retained Earnings", Type: "EQUITY"},
		{Code: "4000", Name: "Sales Revenue", Type: "REVENUE"},
		{Code: "4100", Name: "Other Income", Type: "REVENUE"},
		{Code: "5000", Name: "Cost of Goods Sold", Type: "EXPENSE"},
		{Code: "5100", Name: "Rent Expense", Type: "EXPENSE"},
		{Code: "5200", Name: "Utilities Expense", Type: "EXPENSE"},
		{Code: "5300", Name: "Transport Expense", Type: "EXPENSE"},
		{Code: "5400", Name: "Airtime and Data", Type: "EXPENSE"},
		{Code: "5500", Name: "Salaries and Wages", Type: "EXPENSE"},
		{Code: "5900", Name: "Miscellaneous Expense", Type: "EXPENSE"},
	}
}
