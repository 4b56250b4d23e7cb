// =============================================================================
// Invoice Regrouper - Page Locator
// =============================================================================
//
// This module discovers, for each subscriber identifier, the contiguous
// page range belonging to that subscriber inside the paginated source
// document.
//
// The scan is a single forward pass over the pages: ranges are inferred
// purely from the start boundary of each subscriber's block, which avoids
// parsing the document's semantic structure and tolerates arbitrary
// per-subscriber page counts. The price of that design is the input
// contract: identifiers must be given in their physical page order.
//
// =============================================================================

package pagelocate

import (
	"fmt"
)

// TokenSource is the read-only view of a paginated document's text stream.
// Pages are 1-based at this boundary, matching the document engine.
type TokenSource interface {
	// NumPages returns the total page count.
	NumPages() int

	// PageTokens extracts the text tokens of one page.
	PageTokens(page int) ([]string, error)
}

// PageRange is the contiguous page span of one subscriber, 0-based.
type PageRange struct {
	First int
	Count int
}

// NotFoundError reports a scan that exhausted the document without
// matching every identifier. It is fatal for the invoice: the source
// document is assumed authoritative and complete, so a retry cannot help.
type NotFoundError struct {
	// Missing is the first identifier that was never matched.
	Missing string

	// Found is how many identifiers were matched before the scan failed.
	Found int

	// Wanted is the total number of identifiers searched for.
	Wanted int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("page scan found only %d of %d numbers, %q not found",
		e.Found, e.Wanted, e.Missing)
}

// Locate scans src for the given identifiers, in order, and returns each
// one's page range. The identifier order must match the physical order of
// the subscriber blocks in the document, one block per contiguous range.
func Locate(src TokenSource, numbers []string) (map[string]PageRange, error) {
	results := make(map[string]PageRange, len(numbers))
	if len(numbers) == 0 {
		return results, nil
	}

	numPages := src.NumPages()

	// prev tracks the most recent matched identifier and its 1-based start
	// page; its range closes when the next identifier is sighted.
	var prev struct {
		page   int
		number string
	}

	for page := 1; page <= numPages; page++ {
		// The next identifier to search for: one past the closed ranges,
		// plus one more when a match is already open.
		next := len(results)
		if prev.number != "" {
			next++
		}
		target := numbers[next]

		tokens, err := src.PageTokens(page)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text of page %d: %w", page, err)
		}

		if !pageContains(tokens, target) {
			continue
		}

		if prev.number != "" {
			results[prev.number] = PageRange{
				First: prev.page - 1,
				Count: page - prev.page,
			}
		}
		prev.page = page
		prev.number = target

		// The last identifier closes against the document end; the scan
		// never continues past its start page.
		if len(results) == len(numbers)-1 {
			results[prev.number] = PageRange{
				First: prev.page - 1,
				Count: numPages + 1 - prev.page,
			}
			return results, nil
		}
	}

	found := len(results)
	if prev.number != "" {
		found++
	}
	return nil, &NotFoundError{
		Missing: numbers[found],
		Found:   found,
		Wanted:  len(numbers),
	}
}

// pageContains tests whether any token equals the identifier, either
// verbatim or in the grouped-digits layout some renderers use.
func pageContains(tokens []string, number string) bool {
	alt := GroupDigits(number)
	for _, token := range tokens {
		if token == number || token == alt {
			return true
		}
	}
	return false
}

// GroupDigits reformats a 9-character identifier into three 3-character
// groups separated by spaces ("123456789" -> "123 456 789"). Identifiers
// of any other length are returned unchanged.
func GroupDigits(number string) string {
	if len(number) != 9 {
		return number
	}
	return number[0:3] + " " + number[3:6] + " " + number[6:9]
}
