package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	invoiceNoRe = regexp.MustCompile(
		`(?i)\b(invoice|rechnung)\s*(no|number|nr)?\s*[:#.\-]?\s*([A-Z0-9][A-Z0-9\-]{1,})`)
	amountRe           = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})\b`)
	accountingPeriodRe = regexp.MustCompile(`(?i)(accounting\s*period|abrechnungszeitraum)[:\s]*([A-Z0-9./ \-]{3,})`)
	customerRe         = regexp.MustCompile(`(?i)(customer|kunde|client)[:\s]*([A-ZÄÖÜ][^\n,;]{2,70})`)
)

// Invoice extracts basic fields from invoice-like text. Repeated invoice
// numbers are deduplicated and sorted; amounts and dates are collected to
// help downstream reconciliation.
func Invoice(text string) map[string]string {
	fields := make(map[string]string)

	if m := accountingPeriodRe.FindStringSubmatch(text); m != nil {
		fields["accounting_period"] = strings.TrimSpace(m[2])
	}

	seen := make(map[string]bool)
	var numbers []string
	for _, m := range invoiceNoRe.FindAllStringSubmatch(text, -1) {
		n := strings.TrimSpace(m[3])
		if n != "" && !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	if len(numbers) > 0 {
		sort.Strings(numbers)
		fields["invoice_numbers"] = strings.Join(numbers, ", ")
	}

	if dates := dateRe.FindAllString(text, -1); len(dates) > 0 {
		fields["dates_detected"] = strings.Join(dates, ", ")
	}
	if amounts := amountRe.FindAllString(text, -1); len(amounts) > 0 {
		fields["amounts_detected"] = strings.Join(amounts, ", ")
	}
	if m := customerRe.FindStringSubmatch(text); m != nil {
		fields["customer_name_guess"] = strings.TrimSpace(m[2])
	}
	return fields
}
