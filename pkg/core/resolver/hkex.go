package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kanekanefy/StockReport/pkg/models"
)

const (
	hkexBaseURL         = "https://www.hkexnews.hk"
	hkexIssuerSearchURL = "https://www1.hkexnews.hk/search/issuerSearch.do"
	hkexTitleSearchURL  = "https://www1.hkexnews.hk/search/titleSearchServlet.do"

	// t1code for the prospectus document category on HKEXnews.
	hkexProspectusCategory = "40000"
)

var hkexTickerPattern = regexp.MustCompile(`^\d{4}$`)

// IsValidHKEXTicker reports whether the ticker has the 4-digit HK stock
// code shape.
func IsValidHKEXTicker(ticker string) bool {
	return hkexTickerPattern.MatchString(ticker)
}

// HKEXResolver resolves Hong Kong listed companies via the HKEXnews issuer
// and title search endpoints, with a curated fallback table.
type HKEXResolver struct {
	client *http.Client
}

// NewHKEXResolver creates an HKEX resolver with the default HTTP client.
func NewHKEXResolver() *HKEXResolver {
	return &HKEXResolver{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search queries the HKEXnews issuer search and parses the result table.
// Any transport or parse failure, and an empty result set, degrade to the
// curated table.
func (r *HKEXResolver) Search(ctx context.Context, query string) []models.CompanySearchResult {
	form := url.Values{
		"lang":       {"E"},
		"searchType": {"1"},
		"market":     {"SEHK"},
		"tier":       {"ALL"},
		"sector":     {"ALL"},
		"searchText": {query},
		"sortDir":    {"ASC"},
		"alertMsg":   {""},
		"rowRange":   {"100"},
	}

	doc, err := r.postForm(ctx, hkexIssuerSearchURL, form)
	if err != nil {
		fmt.Printf("[WARNING] HKEX issuer search failed: %v\n", err)
		return r.fallbackSearch(query)
	}

	var results []models.CompanySearchResult
	doc.Find("#issuerSearchResultTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		ticker := strings.TrimSpace(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())
		sector := strings.TrimSpace(cells.Eq(2).Text())

		if ticker == "" || name == "" || !IsValidHKEXTicker(ticker) {
			return
		}
		results = append(results, models.CompanySearchResult{
			ID:       identityID(models.ExchangeHKEX, ticker),
			Name:     name,
			Ticker:   ticker,
			Exchange: models.ExchangeHKEX,
			Sector:   sector,
		})
	})

	if len(results) == 0 {
		return r.fallbackSearch(query)
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results
}

// fallbackSearch matches the query against the curated HK table. An empty
// match still surfaces the full table so a caller has candidates to show.
func (r *HKEXResolver) fallbackSearch(query string) []models.CompanySearchResult {
	matched := searchCatalog(hkexCatalog, models.ExchangeHKEX, query)
	if len(matched) > 0 {
		return matched
	}
	return searchCatalog(hkexCatalog, models.ExchangeHKEX, "")
}

// ListFilings queries the HKEXnews title search for prospectus-category
// documents filed by the ticker. When nothing prospectus-like comes back,
// a placeholder filing is returned so the pipeline can proceed.
func (r *HKEXResolver) ListFilings(ctx context.Context, ticker string) []models.ProspectusInfo {
	form := url.Values{
		"lang":     {"E"},
		"category": {"0"},
		"market":   {"SEHK"},
		"stockId":  {ticker},
		"t1code":   {hkexProspectusCategory},
		"t2Gp":     {"-2"},
		"t2code":   {"-2"},
		"rowRange": {"50"},
		"sortBy":   {"date"},
		"sortDir":  {"DESC"},
	}

	doc, err := r.postForm(ctx, hkexTitleSearchURL, form)
	if err != nil {
		fmt.Printf("[WARNING] HKEX title search failed for %s: %v\n", ticker, err)
		return []models.ProspectusInfo{placeholderFiling(models.ExchangeHKEX, ticker)}
	}

	var filings []models.ProspectusInfo
	doc.Find("#documentSearchResultTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		date := strings.TrimSpace(cells.Eq(0).Text())
		title := strings.TrimSpace(cells.Eq(2).Text())
		docURL, _ := cells.Eq(2).Find("a").Attr("href")

		if title == "" || docURL == "" || !isProspectusTitle(title) {
			return
		}
		if !strings.HasPrefix(docURL, "http") {
			docURL = hkexBaseURL + docURL
		}
		filings = append(filings, models.ProspectusInfo{
			ID:           fmt.Sprintf("hkex-%s-%s", ticker, strings.ReplaceAll(date, "/", "-")),
			CompanyName:  companyNameFromTitle(title),
			Ticker:       ticker,
			Exchange:     models.ExchangeHKEX,
			FilingDate:   parseHKEXDate(date),
			DocumentURL:  docURL,
			DocumentType: classifyDocumentTitle(title),
		})
	})

	if len(filings) == 0 {
		filings = append(filings, placeholderFiling(models.ExchangeHKEX, ticker))
	}
	return filings
}

// postForm submits a form POST and parses the HTML response with goquery.
func (r *HKEXResolver) postForm(ctx context.Context, endpoint string, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HKEX returned status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

var prospectusKeywords = []string{
	"prospectus",
	"listing document",
	"ipo",
	"initial public offering",
	"placing",
	"introduction",
}

// isProspectusTitle reports whether a document title looks like a
// prospectus rather than a circular or results announcement.
func isProspectusTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range prospectusKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// companyNameFromTitle extracts the issuer name from a document title. HKEX
// titles lead with the issuer, separated from the document kind by a dash.
func companyNameFromTitle(title string) string {
	parts := strings.SplitN(title, "-", 2)
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "Unknown Company"
	}
	return name
}

// parseHKEXDate converts the DD/MM/YYYY format used by HKEXnews to ISO
// YYYY-MM-DD. Unrecognised input passes through unchanged.
func parseHKEXDate(dateStr string) string {
	parts := strings.Split(dateStr, "/")
	if len(parts) != 3 {
		return dateStr
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return fmt.Sprintf("%s-%s-%s", year, month, day)
}

// classifyDocumentTitle maps a filing title to a document type.
func classifyDocumentTitle(title string) models.DocumentType {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "ipo") || strings.Contains(lower, "initial public offering") {
		return models.DocTypeIPO
	}
	if strings.Contains(lower, "rights") {
		return models.DocTypeRights
	}
	return models.DocTypeSecondary
}

// placeholderFiling builds the deterministic stand-in record used when no
// real filing could be located for a ticker.
func placeholderFiling(exchange models.Exchange, ticker string) models.ProspectusInfo {
	return models.ProspectusInfo{
		ID:           fmt.Sprintf("%s-%s-demo", exchange, ticker),
		CompanyName:  companyNameForTicker(ticker),
		Ticker:       ticker,
		Exchange:     exchange,
		FilingDate:   "2024-01-15",
		DocumentURL:  "#",
		DocumentType: models.DocTypeIPO,
	}
}
