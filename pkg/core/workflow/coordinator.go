// Package workflow coordinates the full analysis pipeline for a single
// query: company search, filing resolution, document acquisition,
// investment analysis, and report synthesis. It is the only package that
// knows about every stage.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kanekanefy/StockReport/pkg/core/analyzer"
	"github.com/kanekanefy/StockReport/pkg/core/document"
	"github.com/kanekanefy/StockReport/pkg/core/report"
	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/models"
)

// Stage identifies one step of the pipeline.
type Stage string

const (
	StageSearch  Stage = "search"
	StageFilings Stage = "filings"
	StageAcquire Stage = "acquire"
	StageAnalyze Stage = "analyze"
	StageReport  Stage = "report"
)

// StageStatus is the lifecycle state of a single stage.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusError     StageStatus = "error"
)

// Outcome is the terminal state of a whole run.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomePartialSuccess Outcome = "partial_success"
)

var (
	// ErrMissingQuery means the request carried no search query.
	ErrMissingQuery = errors.New("search query is required")
	// ErrUnknownExchange means the request named an unsupported market.
	ErrUnknownExchange = errors.New("unknown exchange")
	// ErrNoCompanies means resolution produced no identity, even after
	// fallback.
	ErrNoCompanies = errors.New("no companies found for the search query")
	// ErrNoFilings means the resolved company has no candidate filings.
	ErrNoFilings = errors.New("no prospectuses found for this company")
)

const (
	maxSearchResultsInPayload = 5
	maxFilingsInPayload       = 3
)

// Request is one end-to-end run. Exchange may be a single market or
// "all" (empty also means all markets).
type Request struct {
	Query          string                `json:"query"`
	Exchange       string                `json:"exchange"`
	AnalysisMethod models.AnalysisMethod `json:"analysisMethod"`
	BatchAnalysis  bool                  `json:"batchAnalysis"`
	ReportConfig   models.ReportConfig   `json:"reportConfig"`
}

// SearchStep summarizes the search stage.
type SearchStep struct {
	Query         string                     `json:"query"`
	Exchange      string                     `json:"exchange"`
	ResultsCount  int                        `json:"resultsCount"`
	TargetCompany models.CompanySearchResult `json:"targetCompany"`
}

// ProspectusStep summarizes filing resolution and document acquisition.
type ProspectusStep struct {
	FoundCount        int                   `json:"foundCount"`
	TargetProspectus  models.ProspectusInfo `json:"targetProspectus"`
	DocumentProcessed bool                  `json:"documentProcessed"`
	Synthetic         bool                  `json:"synthetic"`
}

// AnalysisStep summarizes the analysis stage.
type AnalysisStep struct {
	Method       string `json:"method"`
	ResultsCount int    `json:"resultsCount"`
}

// ReportStep summarizes report synthesis.
type ReportStep struct {
	Config    models.ReportConfig `json:"config"`
	Generated bool                `json:"generated"`
	Size      int                 `json:"size"`
}

// Steps carries the per-stage summaries of a completed run.
type Steps struct {
	Search     SearchStep     `json:"search"`
	Prospectus ProspectusStep `json:"prospectus"`
	Analysis   AnalysisStep   `json:"analysis"`
	Report     ReportStep     `json:"report"`
}

// DocumentSummary is the trimmed view of an acquired document. The raw
// text never leaves the pipeline, only its length.
type DocumentSummary struct {
	TextLength    int                     `json:"textLength"`
	FinancialData models.FinancialData    `json:"financialData"`
	BusinessInfo  models.BusinessInfo     `json:"businessInfo"`
	Metadata      models.DocumentMetadata `json:"metadata"`
}

// Results carries the produced artifacts of a completed run.
type Results struct {
	SearchResults  []models.CompanySearchResult `json:"searchResults"`
	Prospectuses   []models.ProspectusInfo      `json:"prospectuses"`
	ProspectusData *DocumentSummary             `json:"prospectusData"`
	Analyses       []models.AnalysisResult      `json:"analyses"`
	Report         *models.Report               `json:"report,omitempty"`
}

// Result is the terminal payload of a run. Completed runs fill Steps and
// Results; partial successes fill the identity/filing fields plus the
// error markers and omit analysis and report.
type Result struct {
	Workflow Outcome               `json:"workflow"`
	Stages   map[Stage]StageStatus `json:"stages"`

	Steps   *Steps   `json:"steps,omitempty"`
	Results *Results `json:"results,omitempty"`

	SearchResults    []models.CompanySearchResult `json:"searchResults,omitempty"`
	TargetCompany    *models.CompanySearchResult  `json:"targetCompany,omitempty"`
	Prospectuses     []models.ProspectusInfo      `json:"prospectuses,omitempty"`
	TargetProspectus *models.ProspectusInfo       `json:"targetProspectus,omitempty"`
	Error            string                       `json:"error,omitempty"`
	ErrorDetails     string                       `json:"errorDetails,omitempty"`

	CompletedAt time.Time `json:"completedAt"`
}

// DocumentAcquirer is the slice of the document layer the coordinator
// uses.
type DocumentAcquirer interface {
	Acquire(ctx context.Context, url string) (*document.Document, error)
}

// MethodAnalyzer is the slice of the analysis layer the coordinator uses.
type MethodAnalyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (models.AnalysisResult, error)
	BatchAnalyze(ctx context.Context, req analyzer.Request, methods []models.AnalysisMethod) []models.AnalysisResult
}

var (
	_ DocumentAcquirer = (*document.Acquirer)(nil)
	_ MethodAnalyzer   = (*analyzer.Analyzer)(nil)
)

// Coordinator runs the pipeline. It holds no request state; one
// Coordinator serves concurrent runs.
type Coordinator struct {
	registry *resolver.Registry
	acquirer DocumentAcquirer
	analyzer MethodAnalyzer
}

// NewCoordinator wires the coordinator over the given stage
// implementations.
func NewCoordinator(registry *resolver.Registry, acquirer DocumentAcquirer, methodAnalyzer MethodAnalyzer) *Coordinator {
	return &Coordinator{
		registry: registry,
		acquirer: acquirer,
		analyzer: methodAnalyzer,
	}
}

// Run executes the full pipeline for req. It returns an error only for
// conditions with no defined fallback: malformed input, no company
// resolved, or no filings resolved. Analysis and report failures yield a
// partial_success Result instead.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrMissingQuery
	}

	stages := newStageTrace()

	// Stage 1: resolve the company identity.
	stages[StageSearch] = StatusRunning
	searchResults, searchExchange, err := c.search(ctx, req)
	if err != nil {
		stages[StageSearch] = StatusError
		return nil, err
	}
	if len(searchResults) == 0 {
		stages[StageSearch] = StatusError
		return nil, ErrNoCompanies
	}
	stages[StageSearch] = StatusCompleted
	targetCompany := searchResults[0]

	// Stage 2: resolve candidate filings, first one wins.
	stages[StageFilings] = StatusRunning
	filings, err := c.listFilings(ctx, targetCompany)
	if err != nil {
		stages[StageFilings] = StatusError
		return nil, err
	}
	if len(filings) == 0 {
		stages[StageFilings] = StatusError
		return nil, ErrNoFilings
	}
	stages[StageFilings] = StatusCompleted
	targetProspectus := filings[0]

	// Stage 3: acquire the document, falling back to a synthetic one so
	// the downstream stages always have input.
	stages[StageAcquire] = StatusRunning
	doc, synthetic := c.acquire(ctx, targetProspectus, targetCompany)
	stages[StageAcquire] = StatusCompleted

	// Stage 4: run the investment analyses.
	stages[StageAnalyze] = StatusRunning
	analyses, analysisLabel, err := c.analyze(ctx, req, doc, targetCompany, targetProspectus)
	if err != nil {
		stages[StageAnalyze] = StatusError
		return partialResult(stages, req, searchResults, targetCompany, filings, targetProspectus, err), nil
	}
	stages[StageAnalyze] = StatusCompleted

	// Stage 5: synthesize the report.
	stages[StageReport] = StatusRunning
	cfg := mergeReportConfig(req.ReportConfig)
	rendered, err := report.Synthesize(analyses, targetCompany, doc.Financials, cfg)
	if err != nil {
		stages[StageReport] = StatusError
		return partialResult(stages, req, searchResults, targetCompany, filings, targetProspectus, err), nil
	}
	stages[StageReport] = StatusCompleted

	return &Result{
		Workflow: OutcomeCompleted,
		Stages:   stages,
		Steps: &Steps{
			Search: SearchStep{
				Query:         req.Query,
				Exchange:      searchExchange,
				ResultsCount:  len(searchResults),
				TargetCompany: targetCompany,
			},
			Prospectus: ProspectusStep{
				FoundCount:        len(filings),
				TargetProspectus:  targetProspectus,
				DocumentProcessed: true,
				Synthetic:         synthetic,
			},
			Analysis: AnalysisStep{
				Method:       analysisLabel,
				ResultsCount: len(analyses),
			},
			Report: ReportStep{
				Config:    cfg,
				Generated: rendered.Body != "",
				Size:      len(rendered.Body),
			},
		},
		Results: &Results{
			SearchResults: truncateCompanies(searchResults, maxSearchResultsInPayload),
			Prospectuses:  truncateFilings(filings, maxFilingsInPayload),
			ProspectusData: &DocumentSummary{
				TextLength:    len(doc.Text),
				FinancialData: doc.Financials,
				BusinessInfo:  doc.Business,
				Metadata:      doc.Metadata,
			},
			Analyses: analyses,
			Report:   &rendered,
		},
		CompletedAt: time.Now().UTC(),
	}, nil
}

func (c *Coordinator) search(ctx context.Context, req Request) ([]models.CompanySearchResult, string, error) {
	exchange := strings.ToLower(strings.TrimSpace(req.Exchange))
	if exchange == "" || exchange == "all" {
		return c.registry.SearchAll(ctx, req.Query), "all", nil
	}
	market := models.Exchange(exchange)
	if !market.IsValid() {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownExchange, req.Exchange)
	}
	res, err := c.registry.Get(market)
	if err != nil {
		return nil, "", err
	}
	return res.Search(ctx, req.Query), exchange, nil
}

func (c *Coordinator) listFilings(ctx context.Context, company models.CompanySearchResult) ([]models.ProspectusInfo, error) {
	res, err := c.registry.Get(company.Exchange)
	if err != nil {
		return nil, err
	}
	return res.ListFilings(ctx, company.Ticker), nil
}

// acquire fetches the real document when the filing carries a live URL
// and substitutes a synthetic one otherwise. The bool reports whether
// the returned document is synthetic.
func (c *Coordinator) acquire(ctx context.Context, filing models.ProspectusInfo, company models.CompanySearchResult) (*document.Document, bool) {
	url := strings.TrimSpace(filing.DocumentURL)
	if url == "" || strings.HasPrefix(url, "#") {
		return syntheticDocument(company), true
	}

	doc, err := c.acquirer.Acquire(ctx, url)
	if err != nil {
		fmt.Printf("[WORKFLOW] Document acquisition failed for %s, using synthetic data: %v\n", url, err)
		return syntheticDocument(company), true
	}
	return doc, false
}

func (c *Coordinator) analyze(
	ctx context.Context,
	req Request,
	doc *document.Document,
	company models.CompanySearchResult,
	filing models.ProspectusInfo,
) ([]models.AnalysisResult, string, error) {
	analysisReq := analyzer.Request{
		ProspectusID: filing.ID,
		Text:         doc.Text,
		Financials:   doc.Financials,
		Company:      company,
	}

	if req.BatchAnalysis {
		analyses := c.analyzer.BatchAnalyze(ctx, analysisReq, models.AllMethods)
		if len(analyses) == 0 {
			return nil, "", errors.New("all analysis methods failed")
		}
		return analyses, "batch", nil
	}

	method := req.AnalysisMethod
	if method == "" {
		method = models.MethodBuffett
	}
	analysisReq.Method = method
	result, err := c.analyzer.Analyze(ctx, analysisReq)
	if err != nil {
		return nil, "", err
	}
	return []models.AnalysisResult{result}, string(method), nil
}

func newStageTrace() map[Stage]StageStatus {
	return map[Stage]StageStatus{
		StageSearch:  StatusPending,
		StageFilings: StatusPending,
		StageAcquire: StatusPending,
		StageAnalyze: StatusPending,
		StageReport:  StatusPending,
	}
}

func partialResult(
	stages map[Stage]StageStatus,
	req Request,
	searchResults []models.CompanySearchResult,
	targetCompany models.CompanySearchResult,
	filings []models.ProspectusInfo,
	targetProspectus models.ProspectusInfo,
	cause error,
) *Result {
	fmt.Printf("[WORKFLOW] Analysis workflow error for %q: %v\n", req.Query, cause)
	return &Result{
		Workflow:         OutcomePartialSuccess,
		Stages:           stages,
		SearchResults:    truncateCompanies(searchResults, maxSearchResultsInPayload),
		TargetCompany:    &targetCompany,
		Prospectuses:     truncateFilings(filings, maxFilingsInPayload),
		TargetProspectus: &targetProspectus,
		Error:            "Analysis step failed - PDF processing or AI analysis error",
		ErrorDetails:     cause.Error(),
		CompletedAt:      time.Now().UTC(),
	}
}

// mergeReportConfig fills the unset fields of cfg with the pipeline
// defaults.
func mergeReportConfig(cfg models.ReportConfig) models.ReportConfig {
	defaults := models.DefaultReportConfig()
	if cfg.Template == "" {
		cfg.Template = defaults.Template
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.AnalysisDepth == "" {
		cfg.AnalysisDepth = defaults.AnalysisDepth
	}
	return cfg
}

func truncateCompanies(results []models.CompanySearchResult, limit int) []models.CompanySearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func truncateFilings(filings []models.ProspectusInfo, limit int) []models.ProspectusInfo {
	if len(filings) > limit {
		return filings[:limit]
	}
	return filings
}
