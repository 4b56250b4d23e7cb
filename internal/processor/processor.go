// =============================================================================
// Invoice Regrouper - Invoice Processor
// =============================================================================
//
// This module orchestrates the full pipeline for one invoice file:
//
//   1. Parse the invoice XML into the domain model
//   2. Verify structural consistency (fatal findings stop the invoice)
//   3. Categorize subscriber totals into customer groups
//   4. Report configuration gaps (unknown numbers, absent groups)
//   5. Run the plan comparison and report its diagnostics
//   6. Locate each subscriber's page range in the source PDF
//   7. Build the page plan and assemble the regrouped output PDF
//   8. Archive the processed invoice when archiving is configured
//
// Each invoice owns its document handles exclusively for the duration of
// its run; invoices are processed strictly sequentially by the caller so
// console diagnostics stay deterministically ordered.
//
// =============================================================================

package processor

import (
	"fmt"
	"time"

	"github.com/telcobill/invoice-regroup/internal/assemble"
	"github.com/telcobill/invoice-regroup/internal/categorize"
	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/pagelocate"
	"github.com/telcobill/invoice-regroup/internal/plancompare"
	"github.com/telcobill/invoice-regroup/internal/report"
	"github.com/telcobill/invoice-regroup/internal/validation"
	"github.com/telcobill/invoice-regroup/internal/xmlparser"
	"github.com/telcobill/invoice-regroup/pkg/utils"
)

// Result is the outcome of processing one invoice file.
type Result struct {
	// FilePath is the processed invoice XML.
	FilePath string

	// OutputFile is the assembled output PDF; empty on failure.
	OutputFile string

	// Success reports whether the whole pipeline completed.
	Success bool

	// Error is the fatal failure, nil on success.
	Error error

	// Stats carries processing counters.
	Stats Stats
}

// Stats are the processing counters of one invoice.
type Stats struct {
	Subscribers    int
	Groups         int
	UnknownNumbers int
	Warnings       int
	OutputPages    int
	ProcessingTime time.Duration
}

// Processor runs the pipeline for a single invoice file.
type Processor struct {
	xmlPath   string
	cfg       *config.MainConfig
	customers *config.Customers
	plans     config.Plans
	logger    Logger
	reporter  *report.Reporter
}

// New creates a processor for one invoice file. Configuration values are
// immutable for the lifetime of the processor.
func New(xmlPath string, cfg *config.MainConfig, customers *config.Customers, plans config.Plans, logger Logger, reporter *report.Reporter) *Processor {
	return &Processor{
		xmlPath:   xmlPath,
		cfg:       cfg,
		customers: customers,
		plans:     plans,
		logger:    logger,
		reporter:  reporter,
	}
}

// Run executes the pipeline and never panics; all failures land in the
// Result. Fatal errors are final: source documents are static, so a retry
// cannot change the outcome.
func (p *Processor) Run() Result {
	start := time.Now()
	result := Result{FilePath: p.xmlPath}

	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(start)
		return result
	}

	// Step 1: parse.
	p.logger.Info("processing invoice %s", p.xmlPath)
	inv, err := xmlparser.ParseFile(p.xmlPath)
	if err != nil {
		return fail(fmt.Errorf("failed to parse invoice: %w", err))
	}
	result.Stats.Subscribers = len(inv.Subscribers)
	p.reporter.Period(inv.Period())

	// Step 2: structural verification. Warnings are reported and the run
	// continues; a fatal finding aborts this invoice before any output.
	issues := validation.Verify(inv)
	if len(issues) > 0 {
		p.reporter.Issues(issues)
		if path, err := validation.WriteIssueLog(issues, p.cfg.ReportDir); err != nil {
			p.logger.Warn("failed to write issue log: %v", err)
		} else {
			p.logger.Debug("issue log written to %s", path)
		}
	}
	if validation.HasFatal(issues) {
		return fail(fmt.Errorf("invoice failed structural verification"))
	}

	// Step 3: categorize.
	cat := categorize.New(p.customers).Categorize(inv)
	result.Stats.Groups = len(cat.Groups)
	result.Stats.UnknownNumbers = len(cat.UnknownNumbers)
	p.reporter.GroupSums(cat, p.customers)
	p.reporter.UnknownNumbers(cat.UnknownNumbers)
	p.logger.Debug("categorized %d subscribers into %d groups, rounding error %s",
		len(inv.Subscribers), len(cat.Groups), cat.RoundingError)

	// Step 4/5: plan comparison, diagnostics only at this stage.
	planEngine := plancompare.New(p.plans)
	history := plancompare.History{}
	for i := range inv.Subscribers {
		proj, warnings := planEngine.Project(&inv.Subscribers[i])
		history.Add(proj)
		result.Stats.Warnings += len(warnings)
		p.reporter.Warnings(warnings)
	}
	p.reporter.PlanComparison(history, p.customers, p.plans)

	// Step 6: locate subscriber page ranges in the source PDF.
	srcPDF, err := utils.SubstituteSuffix(p.xmlPath, p.cfg.InvoiceSuffix, p.cfg.SourcePDFSuffix)
	if err != nil {
		return fail(fmt.Errorf("failed to derive source PDF path: %w", err))
	}
	doc, err := pagelocate.OpenDocument(srcPDF)
	if err != nil {
		return fail(err)
	}
	defer doc.Close()

	numbers := make([]string, len(inv.Subscribers))
	for i := range inv.Subscribers {
		numbers[i] = inv.Subscribers[i].PhoneNumber
	}
	ranges, err := pagelocate.Locate(doc, numbers)
	if err != nil {
		return fail(fmt.Errorf("failed to locate subscriber pages: %w", err))
	}
	p.logger.Debug("located %d subscriber page ranges over %d pages", len(ranges), doc.NumPages())

	// Step 7: build the page plan and assemble the output document.
	directives, notes := assemble.BuildPlan(cat, p.customers, ranges, assemble.PlanOptions{
		Period:            inv.Period(),
		PrintGroupSummary: p.cfg.PrintGroupSummary,
		Sentinel:          p.customers.SentinelNumber,
	})
	p.reporter.Notes(notes)
	result.Stats.OutputPages = len(directives)

	outPDF, err := utils.SubstituteSuffix(srcPDF, p.cfg.SourcePDFSuffix, p.cfg.OutputPDFSuffix)
	if err != nil {
		return fail(fmt.Errorf("failed to derive output PDF path: %w", err))
	}
	if err := assemble.Assemble(srcPDF, outPDF, directives, p.cfg.MonoFontFile); err != nil {
		return fail(err)
	}
	result.OutputFile = outPDF
	p.logger.Info("wrote %s (%d pages)", outPDF, len(directives))

	// Step 8: archive the invoice once everything succeeded.
	fm := utils.NewFileManager(p.cfg.DataDir, p.cfg.ArchiveDir)
	if archived, err := fm.ArchiveInvoice(p.xmlPath); err != nil {
		p.logger.Warn("failed to archive invoice: %v", err)
	} else if archived != p.xmlPath {
		p.logger.Debug("archived invoice to %s", archived)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(start)
	return result
}
