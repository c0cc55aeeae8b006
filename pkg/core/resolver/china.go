package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/kanekanefy/StockReport/pkg/models"
)

var chinaTickerPattern = regexp.MustCompile(`^\d{6}$`)

// IsValidChinaTicker reports whether the ticker has the 6-digit A-share
// code shape.
func IsValidChinaTicker(ticker string) bool {
	return chinaTickerPattern.MatchString(ticker)
}

// ChinaResolver resolves A-share companies for SSE or SZSE. The mainland
// exchange sites are not reliably reachable from outside, so resolution
// runs entirely off the curated tables and filings are deterministic
// placeholder records.
type ChinaResolver struct {
	exchange models.Exchange
}

// NewChinaResolver creates a resolver bound to SSE or SZSE.
func NewChinaResolver(exchange models.Exchange) *ChinaResolver {
	return &ChinaResolver{exchange: exchange}
}

// Search matches the query against the curated table for the venue.
func (r *ChinaResolver) Search(ctx context.Context, query string) []models.CompanySearchResult {
	table := sseCatalog
	if r.exchange == models.ExchangeSZSE {
		table = szseCatalog
	}
	return searchCatalog(table, r.exchange, query)
}

// chinaFilingTemplates drives the synthetic filing list for A-share tickers.
var chinaFilingTemplates = []struct {
	Title   string
	Date    string
	DocType models.DocumentType
}{
	{Title: "IPO招股说明书", Date: "2023-12-15", DocType: models.DocTypeIPO},
	{Title: "首次公开发行股票招股说明书", Date: "2023-11-20", DocType: models.DocTypeIPO},
	{Title: "配股说明书", Date: "2024-01-10", DocType: models.DocTypeRights},
}

// ListFilings returns the deterministic filing candidates for a ticker.
// Without a scrapeable A-share disclosure index, every record carries a
// synthetic document URL that the acquisition stage recognises and
// substitutes.
func (r *ChinaResolver) ListFilings(ctx context.Context, ticker string) []models.ProspectusInfo {
	name := companyNameForTicker(ticker)
	filings := make([]models.ProspectusInfo, 0, len(chinaFilingTemplates))
	for i, tmpl := range chinaFilingTemplates {
		filings = append(filings, models.ProspectusInfo{
			ID:           fmt.Sprintf("%s-%s-%d", r.exchange, ticker, i),
			CompanyName:  name,
			Ticker:       ticker,
			Exchange:     r.exchange,
			FilingDate:   tmpl.Date,
			DocumentURL:  fmt.Sprintf("#mock-document-%s-%s-%s", r.exchange, ticker, tmpl.DocType),
			DocumentType: tmpl.DocType,
		})
	}
	return filings
}

// ChinaExchangeForTicker classifies a 6-digit code into its home venue by
// code range. Returns false for codes outside both venues' ranges.
func ChinaExchangeForTicker(ticker string) (models.Exchange, bool) {
	if !IsValidChinaTicker(ticker) {
		return "", false
	}
	code, _ := strconv.Atoi(ticker)

	// SSE: 600xxx-603xxx and 605xxx main board, 688xxx STAR Market.
	if (code >= 600000 && code <= 603999) ||
		(code >= 605000 && code <= 605999) ||
		(code >= 688000 && code <= 688999) {
		return models.ExchangeSSE, true
	}

	// SZSE: 000xxx-003xxx main board and SME, 300xxx ChiNext.
	if (code >= 0 && code <= 3999) ||
		(code >= 300000 && code <= 300999) {
		return models.ExchangeSZSE, true
	}
	return "", false
}

// ChinaBoardInfo names the listing board for a 6-digit code.
func ChinaBoardInfo(ticker string) string {
	if !IsValidChinaTicker(ticker) {
		return "未知板块"
	}
	code, _ := strconv.Atoi(ticker)
	switch {
	case code >= 688000 && code <= 688999:
		return "科创板"
	case code >= 300000 && code <= 300999:
		return "创业板"
	case (code >= 600000 && code <= 603999) || (code >= 605000 && code <= 605999):
		return "上交所主板"
	case code >= 2000 && code <= 2999:
		return "中小板"
	case (code >= 0 && code <= 1999) || (code >= 3000 && code <= 3999):
		return "深交所主板"
	}
	return "未知板块"
}

// FormatChinaTicker renders a code with its market suffix, 600519.SH style.
// The venue is detected from the code range when not supplied.
func FormatChinaTicker(ticker string, exchange models.Exchange) string {
	if !IsValidChinaTicker(ticker) {
		return ticker
	}
	if exchange != models.ExchangeSSE && exchange != models.ExchangeSZSE {
		detected, ok := ChinaExchangeForTicker(ticker)
		if !ok {
			return ticker
		}
		exchange = detected
	}
	if exchange == models.ExchangeSSE {
		return ticker + ".SH"
	}
	return ticker + ".SZ"
}
