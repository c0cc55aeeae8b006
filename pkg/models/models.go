// Package models defines the shared data model for the prospectus analysis
// pipeline: resolved companies, filing documents, extracted financials, and
// analysis results.
package models

import "time"

// Exchange identifies a supported listing market.
type Exchange string

const (
	ExchangeHKEX   Exchange = "hkex"
	ExchangeNYSE   Exchange = "nyse"
	ExchangeNASDAQ Exchange = "nasdaq"
	ExchangeSSE    Exchange = "sse"
	ExchangeSZSE   Exchange = "szse"
)

// AllExchanges lists supported markets in fixed priority order.
// Multi-market search results are concatenated in this order.
var AllExchanges = []Exchange{ExchangeHKEX, ExchangeNYSE, ExchangeNASDAQ, ExchangeSSE, ExchangeSZSE}

// IsValid reports whether e is one of the supported exchanges.
func (e Exchange) IsValid() bool {
	switch e {
	case ExchangeHKEX, ExchangeNYSE, ExchangeNASDAQ, ExchangeSSE, ExchangeSZSE:
		return true
	}
	return false
}

// CompanySearchResult is a resolved listed entity. Immutable once produced by
// a resolver.
type CompanySearchResult struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Ticker    string   `json:"ticker"`
	Exchange  Exchange `json:"exchange"`
	Sector    string   `json:"sector,omitempty"`
	MarketCap float64  `json:"marketCap,omitempty"`
}

// DocumentType classifies a filed offering document.
type DocumentType string

const (
	DocTypeIPO       DocumentType = "IPO"
	DocTypeSecondary DocumentType = "Secondary"
	DocTypeRights    DocumentType = "Rights"
)

// ProspectusInfo is a candidate filed document for a known company.
type ProspectusInfo struct {
	ID           string       `json:"id"`
	CompanyName  string       `json:"companyName"`
	Ticker       string       `json:"ticker"`
	Exchange     Exchange     `json:"exchange"`
	FilingDate   string       `json:"filingDate"` // ISO date, YYYY-MM-DD
	DocumentURL  string       `json:"documentUrl"`
	DocumentType DocumentType `json:"documentType"`
	FileSize     int64        `json:"fileSize,omitempty"`
	Pages        int          `json:"pages,omitempty"`
}

// AnalysisMethod is one of the four fixed investment philosophies.
type AnalysisMethod string

const (
	MethodBuffett AnalysisMethod = "buffett"
	MethodLynch   AnalysisMethod = "lynch"
	MethodGraham  AnalysisMethod = "graham"
	MethodFisher  AnalysisMethod = "fisher"
)

// AllMethods lists the analysis methods in their canonical batch order.
var AllMethods = []AnalysisMethod{MethodBuffett, MethodLynch, MethodGraham, MethodFisher}

// IsValid reports whether m is a known analysis method.
func (m AnalysisMethod) IsValid() bool {
	switch m {
	case MethodBuffett, MethodLynch, MethodGraham, MethodFisher:
		return true
	}
	return false
}

// Recommendation is the categorical verdict of a single analysis.
type Recommendation string

const (
	RecommendBuy   Recommendation = "Buy"
	RecommendHold  Recommendation = "Hold"
	RecommendSell  Recommendation = "Sell"
	RecommendAvoid Recommendation = "Avoid"
)

// AnalysisResult is one method's structured verdict, parsed from the
// reasoning engine's free-text reply. Immutable once created.
type AnalysisResult struct {
	ID             string             `json:"id"`
	ProspectusID   string             `json:"prospectusId"`
	Method         AnalysisMethod     `json:"method"`
	Score          int                `json:"score"` // always in [1,10]
	Summary        string             `json:"summary"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	Risks          []string           `json:"risks"`
	Recommendation Recommendation     `json:"recommendation"`
	KeyMetrics     map[string]float64 `json:"keyMetrics"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// FinancialData holds the numeric facts extracted from a prospectus.
// Every field is optional: series may be empty, scalars and ratios nil.
// The derived ratios (ROE, ROA, DebtToEquity) are recomputable from the base
// fields and are never stored stale.
type FinancialData struct {
	Revenue           []float64 `json:"revenue,omitempty"`           // most-recent-first, up to 3 periods
	NetIncome         []float64 `json:"netIncome,omitempty"`         // up to 3 periods
	TotalAssets       *float64  `json:"totalAssets,omitempty"`
	TotalLiabilities  *float64  `json:"totalLiabilities,omitempty"`
	ShareholderEquity *float64  `json:"shareholderEquity,omitempty"`
	OperatingCashFlow []float64 `json:"operatingCashFlow,omitempty"` // up to 3 periods
	FreeCashFlow      []float64 `json:"freeCashFlow,omitempty"`      // up to 3 periods
	ROE               *float64  `json:"roe,omitempty"`               // percent
	ROA               *float64  `json:"roa,omitempty"`               // percent
	DebtToEquity      *float64  `json:"debtToEquity,omitempty"`
	CurrentRatio      *float64  `json:"currentRatio,omitempty"`
}

// BusinessInfo holds the qualitative facts extracted from a prospectus.
type BusinessInfo struct {
	BusinessModel         string   `json:"businessModel,omitempty"`
	MarketPosition        string   `json:"marketPosition,omitempty"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages,omitempty"`
	Risks                 []string `json:"risks,omitempty"`
}

// DocumentMetadata is structural metadata read from the document payload.
type DocumentMetadata struct {
	Pages        int        `json:"pages"`
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	CreationDate *time.Time `json:"creationDate,omitempty"`
}

// ReportLanguage selects the report rendering language.
type ReportLanguage string

const (
	LanguageChinese ReportLanguage = "zh"
	LanguageEnglish ReportLanguage = "en"
)

// ReportConfig controls report layout. It never alters computed content.
type ReportConfig struct {
	Template      string         `json:"template"`
	Language      ReportLanguage `json:"language"`
	Format        string         `json:"format"` // "markdown" or "html"
	AnalysisDepth string         `json:"analysisDepth"`
	// GeneratedAt is injected by the caller so identical inputs always
	// render byte-identical output.
	GeneratedAt time.Time `json:"generatedAt,omitempty"`
}

// DefaultReportConfig mirrors the defaults the workflow applies when the
// request carries no explicit configuration.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Template:      "comprehensive",
		Language:      LanguageChinese,
		Format:        "html",
		AnalysisDepth: "detailed",
	}
}

// Report is the final synthesized document.
type Report struct {
	Body     string         `json:"body"`
	Language ReportLanguage `json:"language"`
	Format   string         `json:"format"`
}

// Float returns a pointer to v. Convenience for building FinancialData.
func Float(v float64) *float64 { return &v }
