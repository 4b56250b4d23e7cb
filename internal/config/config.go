// =============================================================================
// Invoice Regrouper - Configuration Module
// =============================================================================
//
// This module loads and validates the three configuration inputs:
//
//   1. Main config (config.yaml): directories, file-naming suffixes, output
//      options. Read by viper in cmd/root.go and unmarshaled into MainConfig.
//   2. Customer groups (customers.yaml): ordered named groups of phone
//      numbers, plus the sentinel number for the rounding correction.
//   3. Pricing plans (plans.yaml): plan name -> fixed fee and usage prices.
//
// All three are loaded once per run and treated as immutable afterwards.
// The engines receive them as explicit values, never as package state, so
// tests can substitute independent configurations freely.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// DataDir is the directory scanned for provider invoice files.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// InvoiceSuffix selects invoice XML files inside DataDir.
	InvoiceSuffix string `yaml:"invoice_suffix" mapstructure:"invoice_suffix"`

	// SourcePDFSuffix replaces InvoiceSuffix to derive the paginated source
	// document path from an invoice path.
	SourcePDFSuffix string `yaml:"source_pdf_suffix" mapstructure:"source_pdf_suffix"`

	// OutputPDFSuffix replaces SourcePDFSuffix to derive the output document
	// path. It must differ from SourcePDFSuffix so the source is never
	// overwritten.
	OutputPDFSuffix string `yaml:"output_pdf_suffix" mapstructure:"output_pdf_suffix"`

	// CustomersFile and PlansFile point to the two table configurations.
	// Defaults are resolved relative to DataDir.
	CustomersFile string `yaml:"customers_file" mapstructure:"customers_file"`
	PlansFile     string `yaml:"plans_file" mapstructure:"plans_file"`

	// PrintGroupSummary injects a synthesized summary page before each
	// customer group. When false, the group label (and the group sum on the
	// first page) is overlaid on the group's first copied page instead.
	PrintGroupSummary bool `yaml:"print_group_summary" mapstructure:"print_group_summary"`

	// MonoFontFile is a TTF of a monospaced font embedded into synthesized
	// pages, needed for glyph coverage beyond the core fonts. Empty falls
	// back to the built-in Courier.
	MonoFontFile string `yaml:"mono_font_file" mapstructure:"mono_font_file"`

	// ReportDir receives plan-comparison workbooks from the analyze command.
	ReportDir string `yaml:"report_dir" mapstructure:"report_dir"`

	// ArchiveDir receives fully processed invoice files. Empty disables
	// archiving.
	ArchiveDir string `yaml:"archive_dir" mapstructure:"archive_dir"`

	// LogLevel controls application logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ApplyDefaults fills every unset option with its documented default.
func (c *MainConfig) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.InvoiceSuffix == "" {
		c.InvoiceSuffix = "-s.xml"
	}
	if c.SourcePDFSuffix == "" {
		c.SourcePDFSuffix = "-fs.pdf"
	}
	if c.OutputPDFSuffix == "" {
		c.OutputPDFSuffix = "-fs-reordered.pdf"
	}
	if c.CustomersFile == "" {
		c.CustomersFile = filepath.Join(c.DataDir, "customers.yaml")
	}
	if c.PlansFile == "" {
		c.PlansFile = filepath.Join(c.DataDir, "plans.yaml")
	}
	if c.ReportDir == "" {
		c.ReportDir = "./reports"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configurations that cannot work.
func (c *MainConfig) Validate() error {
	if c.SourcePDFSuffix == c.OutputPDFSuffix {
		return fmt.Errorf("source_pdf_suffix and output_pdf_suffix must differ (both %q)", c.SourcePDFSuffix)
	}
	if !strings.HasSuffix(c.InvoiceSuffix, ".xml") {
		return fmt.Errorf("invoice_suffix %q must end in .xml", c.InvoiceSuffix)
	}
	if _, err := os.Stat(c.DataDir); err != nil {
		return fmt.Errorf("data_dir %q: %w", c.DataDir, err)
	}
	if c.MonoFontFile != "" {
		if _, err := os.Stat(c.MonoFontFile); err != nil {
			return fmt.Errorf("mono_font_file %q: %w", c.MonoFontFile, err)
		}
	}
	return nil
}

// =============================================================================
// CUSTOMER GROUPS
// =============================================================================

// DefaultSentinel is the reserved non-real phone number that routes the
// rounding-correction entry into whichever group lists it.
const DefaultSentinel = "0"

// CustomerGroup is one administratively billed party.
type CustomerGroup struct {
	// Name is the display label used on summary pages and in diagnostics.
	Name string `yaml:"name"`

	// AccountRef is the party's account reference number (variable symbol).
	AccountRef int64 `yaml:"account_ref"`

	// Numbers are the phone numbers the group owns, in the order their
	// pages should appear in the regrouped document.
	Numbers []string `yaml:"numbers"`
}

// Customers is the full customer-group configuration.
type Customers struct {
	// SentinelNumber is the placeholder phone number that receives the
	// rounding correction. It is only effective when some group lists it.
	SentinelNumber string `yaml:"sentinel_number"`

	// Groups are the configured customer groups, in output order. The first
	// group listing a phone number owns it.
	Groups []CustomerGroup `yaml:"groups"`
}

// NumberToGroup builds the phone-number -> group-name lookup used by the
// categorization engine. First match wins on duplicates.
func (c *Customers) NumberToGroup() map[string]string {
	lookup := make(map[string]string)
	for _, g := range c.Groups {
		for _, n := range g.Numbers {
			if _, taken := lookup[n]; !taken {
				lookup[n] = g.Name
			}
		}
	}
	return lookup
}

// SentinelGroup returns the name of the group that claims the sentinel
// number, if any.
func (c *Customers) SentinelGroup() (string, bool) {
	name, ok := c.NumberToGroup()[c.SentinelNumber]
	return name, ok
}

// LoadCustomers reads and validates the customer-group configuration.
func LoadCustomers(path string) (*Customers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read customers file: %w", err)
	}

	var customers Customers
	if err := yaml.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("failed to parse customers file: %w", err)
	}

	if customers.SentinelNumber == "" {
		customers.SentinelNumber = DefaultSentinel
	}
	if len(customers.Groups) == 0 {
		return nil, fmt.Errorf("customers file %s defines no groups", path)
	}
	for _, g := range customers.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("customers file %s contains a group without a name", path)
		}
	}

	return &customers, nil
}

// =============================================================================
// PRICING PLANS
// =============================================================================

// Plan is one named pricing scheme a subscriber may be billed under.
type Plan struct {
	// FixedPrice is the monthly fee.
	FixedPrice decimal.Decimal `yaml:"fixed_price"`

	// VoiceMinutePrice is the price per voice minute.
	VoiceMinutePrice decimal.Decimal `yaml:"voice_minute_price"`

	// SMSPrice is the price per SMS.
	SMSPrice decimal.Decimal `yaml:"sms_price"`
}

// Plans maps plan name to definition.
type Plans map[string]Plan

// Names returns the plan names sorted for deterministic iteration.
func (p Plans) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPlans reads the pricing-plan table.
func LoadPlans(path string) (Plans, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var plans Plans
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("plans file %s defines no plans", path)
	}

	return plans, nil
}
