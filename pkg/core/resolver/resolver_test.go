package resolver

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// fakeResolver lets tests script per-market behavior.
type fakeResolver struct {
	searchFunc  func(ctx context.Context, query string) []models.CompanySearchResult
	filingsFunc func(ctx context.Context, ticker string) []models.ProspectusInfo
}

func (f *fakeResolver) Search(ctx context.Context, query string) []models.CompanySearchResult {
	if f.searchFunc == nil {
		return nil
	}
	return f.searchFunc(ctx, query)
}

func (f *fakeResolver) ListFilings(ctx context.Context, ticker string) []models.ProspectusInfo {
	if f.filingsFunc == nil {
		return nil
	}
	return f.filingsFunc(ctx, ticker)
}

func TestHKEXFallbackSearchFindsTencent(t *testing.T) {
	r := NewHKEXResolver()

	results := r.fallbackSearch("Tencent")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Ticker != "0700" {
		t.Errorf("expected ticker 0700, got %s", got.Ticker)
	}
	if got.Exchange != models.ExchangeHKEX {
		t.Errorf("expected hkex exchange, got %s", got.Exchange)
	}
	if got.ID != "hkex-0700" {
		t.Errorf("expected id hkex-0700, got %s", got.ID)
	}
}

func TestHKEXFallbackSearchNoMatchReturnsCatalog(t *testing.T) {
	r := NewHKEXResolver()

	results := r.fallbackSearch("zzz-no-such-company")
	if len(results) != len(hkexCatalog) {
		t.Fatalf("expected full catalog of %d, got %d", len(hkexCatalog), len(results))
	}
}

func TestSECFallbackSearch(t *testing.T) {
	nyse := NewSECResolver(models.ExchangeNYSE)
	results := nyse.fallbackSearch("apple")
	if len(results) != 1 || results[0].Ticker != "AAPL" {
		t.Fatalf("expected single AAPL match, got %+v", results)
	}

	nasdaq := NewSECResolver(models.ExchangeNASDAQ)
	results = nasdaq.fallbackSearch("NFLX")
	if len(results) != 1 || results[0].Ticker != "NFLX" {
		t.Fatalf("expected single NFLX match, got %+v", results)
	}
	if results[0].Exchange != models.ExchangeNASDAQ {
		t.Errorf("expected nasdaq exchange, got %s", results[0].Exchange)
	}
}

func TestChinaSearchMatchesBySector(t *testing.T) {
	r := NewChinaResolver(models.ExchangeSSE)
	results := r.Search(context.Background(), "金融")
	if len(results) == 0 {
		t.Fatal("expected sector matches for 金融")
	}
	for _, got := range results {
		if got.Exchange != models.ExchangeSSE {
			t.Errorf("expected sse exchange, got %s", got.Exchange)
		}
	}
}

func TestChinaListFilings(t *testing.T) {
	r := NewChinaResolver(models.ExchangeSSE)
	filings := r.ListFilings(context.Background(), "600519")

	if len(filings) != 3 {
		t.Fatalf("expected 3 filing candidates, got %d", len(filings))
	}
	if filings[0].CompanyName != "贵州茅台酒股份有限公司" {
		t.Errorf("expected curated name for 600519, got %s", filings[0].CompanyName)
	}
	for _, f := range filings {
		if !strings.HasPrefix(f.DocumentURL, "#") {
			t.Errorf("expected synthetic document URL, got %s", f.DocumentURL)
		}
	}
	if filings[2].DocumentType != models.DocTypeRights {
		t.Errorf("expected rights issue last, got %s", filings[2].DocumentType)
	}
}

func TestSearchAllMergesInMarketOrder(t *testing.T) {
	registry := NewRegistry()
	for _, exchange := range models.AllExchanges {
		registry.Set(exchange, &fakeResolver{})
	}
	registry.Set(models.ExchangeSSE, &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{
				{ID: "sse-600941", Name: "中国移动", Ticker: "600941", Exchange: models.ExchangeSSE},
			}
		},
	})
	registry.Set(models.ExchangeHKEX, &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{
				{ID: "hkex-0941", Name: "China Mobile Limited", Ticker: "0941", Exchange: models.ExchangeHKEX},
			}
		},
	})

	merged := registry.SearchAll(context.Background(), "china mobile")
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged results, got %d", len(merged))
	}
	// HKEX comes before SSE in the fixed market order.
	if merged[0].Exchange != models.ExchangeHKEX {
		t.Errorf("expected hkex first, got %s", merged[0].Exchange)
	}
	if merged[1].Exchange != models.ExchangeSSE {
		t.Errorf("expected sse second, got %s", merged[1].Exchange)
	}
}

func TestSearchAllDeduplicatesOnTickerAndExchange(t *testing.T) {
	registry := NewRegistry()
	for _, exchange := range models.AllExchanges {
		registry.Set(exchange, &fakeResolver{})
	}
	registry.Set(models.ExchangeNYSE, &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{
				{ID: "nyse-AAPL", Name: "Apple Inc.", Ticker: "AAPL", Exchange: models.ExchangeNYSE},
				{ID: "nyse-AAPL", Name: "Apple Inc.", Ticker: "AAPL", Exchange: models.ExchangeNYSE},
			}
		},
	})
	registry.Set(models.ExchangeNASDAQ, &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			// Same ticker on another venue survives dedup.
			return []models.CompanySearchResult{
				{ID: "nasdaq-AAPL", Name: "Apple Inc.", Ticker: "AAPL", Exchange: models.ExchangeNASDAQ},
			}
		},
	})

	merged := registry.SearchAll(context.Background(), "apple")
	if len(merged) != 2 {
		t.Fatalf("expected 2 results after dedup, got %d", len(merged))
	}
}

func TestSearchAllCapsResults(t *testing.T) {
	registry := NewRegistry()
	for _, exchange := range models.AllExchanges {
		registry.Set(exchange, &fakeResolver{})
	}
	registry.Set(models.ExchangeNYSE, &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			var many []models.CompanySearchResult
			for i := 0; i < 30; i++ {
				ticker := fmt.Sprintf("T%d", i)
				many = append(many, models.CompanySearchResult{
					ID: "nyse-" + ticker, Ticker: ticker, Exchange: models.ExchangeNYSE,
				})
			}
			return many
		},
	})

	merged := registry.SearchAll(context.Background(), "t")
	if len(merged) != maxSearchResults {
		t.Fatalf("expected cap at %d, got %d", maxSearchResults, len(merged))
	}
}

func TestTickerValidators(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		valid  func(string) bool
		want   bool
	}{
		{"hk four digits", "0700", IsValidHKEXTicker, true},
		{"hk too short", "700", IsValidHKEXTicker, false},
		{"hk letters", "070A", IsValidHKEXTicker, false},
		{"us short", "V", IsValidUSTicker, true},
		{"us lowercase accepted", "aapl", IsValidUSTicker, true},
		{"us too long", "ABCDEF", IsValidUSTicker, false},
		{"china six digits", "600519", IsValidChinaTicker, true},
		{"china four digits", "0700", IsValidChinaTicker, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.valid(tt.ticker); got != tt.want {
				t.Errorf("valid(%q) = %v, want %v", tt.ticker, got, tt.want)
			}
		})
	}
}

func TestChinaExchangeForTicker(t *testing.T) {
	tests := []struct {
		ticker   string
		exchange models.Exchange
		ok       bool
	}{
		{"600519", models.ExchangeSSE, true},
		{"688001", models.ExchangeSSE, true},
		{"000001", models.ExchangeSZSE, true},
		{"300750", models.ExchangeSZSE, true},
		{"400000", "", false},
		{"abc123", "", false},
	}

	for _, tt := range tests {
		got, ok := ChinaExchangeForTicker(tt.ticker)
		if ok != tt.ok || got != tt.exchange {
			t.Errorf("ChinaExchangeForTicker(%q) = (%q, %v), want (%q, %v)",
				tt.ticker, got, ok, tt.exchange, tt.ok)
		}
	}
}

func TestChinaBoardInfo(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"688001", "科创板"},
		{"300750", "创业板"},
		{"600519", "上交所主板"},
		{"002594", "中小板"},
		{"000001", "深交所主板"},
		{"badcode", "未知板块"},
	}

	for _, tt := range tests {
		if got := ChinaBoardInfo(tt.ticker); got != tt.want {
			t.Errorf("ChinaBoardInfo(%q) = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}

func TestFormatChinaTicker(t *testing.T) {
	if got := FormatChinaTicker("600519", ""); got != "600519.SH" {
		t.Errorf("expected 600519.SH, got %s", got)
	}
	if got := FormatChinaTicker("300750", ""); got != "300750.SZ" {
		t.Errorf("expected 300750.SZ, got %s", got)
	}
	if got := FormatChinaTicker("0700", ""); got != "0700" {
		t.Errorf("invalid code should pass through, got %s", got)
	}
}

func TestParseHKEXDate(t *testing.T) {
	if got := parseHKEXDate("15/01/2024"); got != "2024-01-15" {
		t.Errorf("expected 2024-01-15, got %s", got)
	}
	if got := parseHKEXDate("5/3/2023"); got != "2023-03-05" {
		t.Errorf("expected zero padding, got %s", got)
	}
	if got := parseHKEXDate("2024-01-15"); got != "2024-01-15" {
		t.Errorf("unrecognised format should pass through, got %s", got)
	}
}

func TestClassifyDocumentTitle(t *testing.T) {
	tests := []struct {
		title string
		want  models.DocumentType
	}{
		{"ACME Corp - IPO Prospectus", models.DocTypeIPO},
		{"ACME Corp - Rights Issue Listing Document", models.DocTypeRights},
		{"ACME Corp - Placing Prospectus", models.DocTypeSecondary},
	}
	for _, tt := range tests {
		if got := classifyDocumentTitle(tt.title); got != tt.want {
			t.Errorf("classifyDocumentTitle(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestClassifySECForm(t *testing.T) {
	tests := []struct {
		form string
		want models.DocumentType
	}{
		{"S-1", models.DocTypeIPO},
		{"F-1/A", models.DocTypeIPO},
		{"424B4", models.DocTypeSecondary},
		{"", models.DocTypeIPO},
	}
	for _, tt := range tests {
		if got := classifySECForm(tt.form); got != tt.want {
			t.Errorf("classifySECForm(%q) = %s, want %s", tt.form, got, tt.want)
		}
	}
}

func TestIsProspectusTitle(t *testing.T) {
	if !isProspectusTitle("Global Offering Prospectus") {
		t.Error("expected prospectus title to match")
	}
	if isProspectusTitle("Annual Results Announcement") {
		t.Error("announcement should not match")
	}
}

func TestPlaceholderFiling(t *testing.T) {
	got := placeholderFiling(models.ExchangeHKEX, "9999")
	if got.ID != "hkex-9999-demo" {
		t.Errorf("expected demo id, got %s", got.ID)
	}
	if got.DocumentURL != "#" {
		t.Errorf("expected synthetic URL marker, got %s", got.DocumentURL)
	}
	if got.CompanyName != "Company 9999" {
		t.Errorf("expected generic name, got %s", got.CompanyName)
	}
	if got.DocumentType != models.DocTypeIPO {
		t.Errorf("expected IPO type, got %s", got.DocumentType)
	}
}
