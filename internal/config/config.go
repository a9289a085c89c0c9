package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/sfimport/internal/mapper"
	"github.com/cleared-dev/sfimport/internal/model"
)

// FileName is the project configuration file at the repository root.
const FileName = "sfimport.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config represents the top-level sfimport.yaml configuration.
type Config struct {
	Ledger   LedgerConfig    `yaml:"ledger"`
	Import   ImportConfig    `yaml:"import"`
	Accounts []AccountConfig `yaml:"accounts,omitempty"`
	Git      GitConfig       `yaml:"git"`
}

// LedgerConfig holds the global posting defaults.
type LedgerConfig struct {
	Name             string `yaml:"name"`
	DefaultCurrency  string `yaml:"default_currency"`
	ExpenseAccount   string `yaml:"expense_account"`
	IncomeAccount    string `yaml:"income_account"`
	BalanceAssertion string `yaml:"balance_assertion"` // "start_of_day" or "end_of_day"
	Timezone         string `yaml:"timezone,omitempty"`
}

// ImportConfig controls the import driver.
type ImportConfig struct {
	LookbackDays   int  `yaml:"lookback_days"`
	IncludePending bool `yaml:"include_pending"`
	Archive        bool `yaml:"archive"`
}

// AccountConfig maps one SimpleFIN account to the ledger.
type AccountConfig struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name,omitempty"`
	Account        string `yaml:"account"`
	Currency       string `yaml:"currency,omitempty"`
	ExpenseAccount string `yaml:"expense_account,omitempty"`
	IncomeAccount  string `yaml:"income_account,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads and validates a sfimport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(name string) *Config {
	return &Config{
		Ledger: LedgerConfig{
			Name:             name,
			DefaultCurrency:  mapper.DefaultCurrency,
			ExpenseAccount:   mapper.DefaultExpenseAccount,
			IncomeAccount:    mapper.DefaultIncomeAccount,
			BalanceAssertion: string(mapper.StartOfDay),
		},
		Import: ImportConfig{
			LookbackDays: 10,
			Archive:      true,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "sfimport",
			AuthorEmail: "sfimport@localhost",
		},
	}
}

// Validate checks account names, currencies, and enum values.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if !model.ValidCurrency(c.Ledger.DefaultCurrency) {
		return invalid("ledger.default_currency %q", c.Ledger.DefaultCurrency)
	}
	if model.TypeOf(c.Ledger.ExpenseAccount) == "" {
		return invalid("ledger.expense_account %q has no valid root", c.Ledger.ExpenseAccount)
	}
	if model.TypeOf(c.Ledger.IncomeAccount) == "" {
		return invalid("ledger.income_account %q has no valid root", c.Ledger.IncomeAccount)
	}
	switch mapper.BalanceTiming(c.Ledger.BalanceAssertion) {
	case mapper.StartOfDay, mapper.EndOfDay:
	default:
		return invalid("ledger.balance_assertion %q (want start_of_day or end_of_day)", c.Ledger.BalanceAssertion)
	}
	if _, err := c.Location(); err != nil {
		return invalid("ledger.timezone %q: %v", c.Ledger.Timezone, err)
	}
	if c.Import.LookbackDays < 0 {
		return invalid("import.lookback_days must not be negative")
	}

	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.ID == "" {
			return invalid("accounts[%d]: id is required", i)
		}
		if seen[a.ID] {
			return invalid("accounts[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
		if model.TypeOf(a.Account) == "" {
			return invalid("accounts[%d]: account %q has no valid root", i, a.Account)
		}
		if a.Currency != "" && !model.ValidCurrency(a.Currency) {
			return invalid("accounts[%d]: currency %q", i, a.Currency)
		}
		for _, counter := range []string{a.ExpenseAccount, a.IncomeAccount} {
			if counter != "" && model.TypeOf(counter) == "" {
				return invalid("accounts[%d]: counter account %q has no valid root", i, counter)
			}
		}
	}
	return nil
}

// Mapping returns the account routing table.
func (c *Config) Mapping() model.AccountMapping {
	m := make(model.AccountMapping, len(c.Accounts))
	for _, a := range c.Accounts {
		m[a.ID] = model.AccountRoute{
			Account:        a.Account,
			Currency:       a.Currency,
			ExpenseAccount: a.ExpenseAccount,
			IncomeAccount:  a.IncomeAccount,
		}
	}
	return m
}

// MapperOptions returns the global mapper settings.
func (c *Config) MapperOptions() mapper.Options {
	return mapper.Options{
		DefaultCurrency:       c.Ledger.DefaultCurrency,
		DefaultExpenseAccount: c.Ledger.ExpenseAccount,
		DefaultIncomeAccount:  c.Ledger.IncomeAccount,
		BalanceTiming:         mapper.BalanceTiming(c.Ledger.BalanceAssertion),
	}
}

// Location returns the timezone used to turn unix timestamps into dates.
// An empty timezone means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Ledger.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Ledger.Timezone)
}

// Lookback returns the duplicate search window.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Import.LookbackDays) * 24 * time.Hour
}
