package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kanekanefy/StockReport/pkg/models"
)

const (
	secBaseURL        = "https://www.sec.gov"
	edgarFullTextURL  = "https://efts.sec.gov/LATEST/search-index"
	edgarUserAgent    = "Mozilla/5.0 (compatible; StockReport/1.0; research)"
	maxFilingsPerList = 10
)

var usTickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// IsValidUSTicker reports whether the ticker has the 1-5 letter US shape.
// The check is case-insensitive.
func IsValidUSTicker(ticker string) bool {
	return usTickerPattern.MatchString(strings.ToUpper(ticker))
}

// SECResolver resolves US listed companies for one of the two US venues
// through the SEC EDGAR full-text search API, with a curated fallback.
type SECResolver struct {
	exchange models.Exchange
	client   *http.Client
}

// NewSECResolver creates a resolver bound to NYSE or NASDAQ.
func NewSECResolver(exchange models.Exchange) *SECResolver {
	return &SECResolver{
		exchange: exchange,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// edgarHit mirrors the subset of the EDGAR full-text search response the
// resolver reads.
type edgarHit struct {
	Source struct {
		DisplayNames []string `json:"display_names"`
		Ticker       string   `json:"ticker"`
		FileDate     string   `json:"file_date"`
		PeriodEnding string   `json:"period_ending"`
		Form         string   `json:"form"`
		RootForm     string   `json:"root_form"`
		CIKs         []string `json:"ciks"`
		Size         int64    `json:"size"`
	} `json:"_source"`
}

type edgarResponse struct {
	Hits struct {
		Hits []edgarHit `json:"hits"`
	} `json:"hits"`
}

// Search queries EDGAR full-text search for IPO-adjacent filers matching
// the query. Failures and empty result sets degrade to the curated table.
func (r *SECResolver) Search(ctx context.Context, query string) []models.CompanySearchResult {
	params := url.Values{
		"q":         {query},
		"dateRange": {"all"},
		"category":  {"custom"},
		"startdt":   {"2020-01-01"},
		"enddt":     {time.Now().Format("2006-01-02")},
	}
	for _, form := range []string{"10-K", "S-1", "F-1"} {
		params.Add("forms", form)
	}

	var parsed edgarResponse
	if err := r.getJSON(ctx, params, &parsed); err != nil {
		fmt.Printf("[WARNING] EDGAR search failed for %s: %v\n", r.exchange, err)
		return r.fallbackSearch(query)
	}

	hits := parsed.Hits.Hits
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}

	seen := make(map[string]bool)
	var results []models.CompanySearchResult
	for _, hit := range hits {
		src := hit.Source
		if len(src.DisplayNames) == 0 {
			continue
		}
		displayName := src.DisplayNames[0]
		ticker := tickerFromDisplayName(displayName)
		if ticker == "" {
			ticker = src.Ticker
		}
		if ticker == "" || seen[ticker] {
			continue
		}
		if r.exchange == models.ExchangeNASDAQ && !isLikelyNASDAQ(ticker) {
			continue
		}
		seen[ticker] = true
		results = append(results, models.CompanySearchResult{
			ID:       identityID(r.exchange, ticker),
			Name:     cleanUSCompanyName(displayName),
			Ticker:   ticker,
			Exchange: r.exchange,
			Sector:   sectorFromName(displayName),
		})
	}

	if len(results) == 0 {
		return r.fallbackSearch(query)
	}
	return results
}

func (r *SECResolver) fallbackSearch(query string) []models.CompanySearchResult {
	table := nyseCatalog
	if r.exchange == models.ExchangeNASDAQ {
		table = nasdaqCatalog
	}
	return searchCatalog(table, r.exchange, query)
}

// ListFilings searches EDGAR for prospectus-class forms filed under the
// ticker. A placeholder record is returned when nothing usable comes back.
func (r *SECResolver) ListFilings(ctx context.Context, ticker string) []models.ProspectusInfo {
	params := url.Values{
		"q":         {ticker},
		"dateRange": {"all"},
		"category":  {"custom"},
		"startdt":   {"2015-01-01"},
		"enddt":     {time.Now().Format("2006-01-02")},
	}
	for _, form := range []string{"S-1", "F-1", "424B1", "424B2", "424B3", "424B4", "424B5"} {
		params.Add("forms", form)
	}

	var parsed edgarResponse
	if err := r.getJSON(ctx, params, &parsed); err != nil {
		fmt.Printf("[WARNING] EDGAR filing search failed for %s: %v\n", ticker, err)
		return []models.ProspectusInfo{placeholderFiling(r.exchange, ticker)}
	}

	hits := parsed.Hits.Hits
	if len(hits) > maxFilingsPerList {
		hits = hits[:maxFilingsPerList]
	}

	var filings []models.ProspectusInfo
	for _, hit := range hits {
		src := hit.Source
		filingDate := src.FileDate
		if filingDate == "" {
			filingDate = src.PeriodEnding
		}

		docURL := "#"
		if src.RootForm != "" && len(src.CIKs) > 0 {
			docURL = fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
				secBaseURL, src.CIKs[0], strings.ReplaceAll(src.RootForm, "-", ""), src.RootForm)
		}

		companyName := "Company " + ticker
		if len(src.DisplayNames) > 0 {
			companyName = src.DisplayNames[0]
		}

		filings = append(filings, models.ProspectusInfo{
			ID:           fmt.Sprintf("%s-%s-%s", r.exchange, ticker, filingDate),
			CompanyName:  companyName,
			Ticker:       ticker,
			Exchange:     r.exchange,
			FilingDate:   normalizeSECDate(filingDate),
			DocumentURL:  docURL,
			DocumentType: classifySECForm(src.Form),
			FileSize:     src.Size,
		})
	}

	if len(filings) == 0 {
		filings = append(filings, placeholderFiling(r.exchange, ticker))
	}
	return filings
}

func (r *SECResolver) getJSON(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", edgarFullTextURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", edgarUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("EDGAR returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

var displayNameTickerPattern = regexp.MustCompile(`\(([A-Z]{1,5})\)`)

// tickerFromDisplayName extracts a parenthesised ticker from an EDGAR
// display name like "Acme Corp (ACME)".
func tickerFromDisplayName(name string) string {
	match := displayNameTickerPattern.FindStringSubmatch(name)
	if match == nil {
		return ""
	}
	return match[1]
}

// cleanUSCompanyName strips the parenthesised ticker and collapses spaces.
func cleanUSCompanyName(name string) string {
	cleaned := displayNameTickerPattern.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// sectorFromName guesses a sector from name keywords. EDGAR full-text hits
// carry no sector field, so a heuristic is the best available signal.
func sectorFromName(companyName string) string {
	name := strings.ToLower(companyName)
	switch {
	case strings.Contains(name, "bank") || strings.Contains(name, "financial") || strings.Contains(name, "capital"):
		return "Financial Services"
	case strings.Contains(name, "tech") || strings.Contains(name, "software") || strings.Contains(name, "systems"):
		return "Technology"
	case strings.Contains(name, "pharma") || strings.Contains(name, "bio") || strings.Contains(name, "health"):
		return "Healthcare"
	case strings.Contains(name, "energy") || strings.Contains(name, "oil") || strings.Contains(name, "gas"):
		return "Energy"
	case strings.Contains(name, "retail") || strings.Contains(name, "consumer"):
		return "Consumer Discretionary"
	}
	return "Diversified"
}

var nasdaqTickerPattern = regexp.MustCompile(`^[A-Z]{3,5}$`)

// isLikelyNASDAQ applies the rough venue filter used when EDGAR cannot say
// which exchange a ticker trades on.
func isLikelyNASDAQ(ticker string) bool {
	return len(ticker) >= 4 || nasdaqTickerPattern.MatchString(ticker)
}

// normalizeSECDate trims the time component off an EDGAR timestamp.
func normalizeSECDate(dateStr string) string {
	if dateStr == "" {
		return time.Now().Format("2006-01-02")
	}
	if idx := strings.Index(dateStr, "T"); idx != -1 {
		return dateStr[:idx]
	}
	return dateStr
}

// classifySECForm maps an SEC form code to a document type. S-1 and F-1
// registrations are IPOs; 424B pricing supplements are secondaries.
func classifySECForm(form string) models.DocumentType {
	formUpper := strings.ToUpper(form)
	switch {
	case strings.Contains(formUpper, "S-1") || strings.Contains(formUpper, "F-1"):
		return models.DocTypeIPO
	case strings.Contains(formUpper, "424B"):
		return models.DocTypeSecondary
	}
	return models.DocTypeIPO
}
