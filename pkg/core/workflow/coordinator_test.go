package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kanekanefy/StockReport/pkg/core/analyzer"
	"github.com/kanekanefy/StockReport/pkg/core/document"
	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/models"
)

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

type fakeAcquirer struct {
	acquireFunc func(ctx context.Context, url string) (*document.Document, error)
	calls       []string
}

func (f *fakeAcquirer) Acquire(ctx context.Context, url string) (*document.Document, error) {
	f.calls = append(f.calls, url)
	if f.acquireFunc == nil {
		return nil, errors.New("no acquirer configured")
	}
	return f.acquireFunc(ctx, url)
}

type fakeAnalyzer struct {
	analyzeFunc  func(ctx context.Context, req analyzer.Request) (models.AnalysisResult, error)
	batchFunc    func(ctx context.Context, req analyzer.Request, methods []models.AnalysisMethod) []models.AnalysisResult
	lastRequest  analyzer.Request
	batchMethods []models.AnalysisMethod
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analyzer.Request) (models.AnalysisResult, error) {
	f.lastRequest = req
	if f.analyzeFunc == nil {
		return resultFor(req.Method), nil
	}
	return f.analyzeFunc(ctx, req)
}

func (f *fakeAnalyzer) BatchAnalyze(ctx context.Context, req analyzer.Request, methods []models.AnalysisMethod) []models.AnalysisResult {
	f.lastRequest = req
	f.batchMethods = methods
	if f.batchFunc == nil {
		results := make([]models.AnalysisResult, 0, len(methods))
		for _, m := range methods {
			results = append(results, resultFor(m))
		}
		return results
	}
	return f.batchFunc(ctx, req, methods)
}

func resultFor(method models.AnalysisMethod) models.AnalysisResult {
	return models.AnalysisResult{
		ID:             "result-" + string(method),
		Method:         method,
		Score:          7,
		Summary:        "稳健的长期投资标的",
		Strengths:      []string{"品牌优势"},
		Weaknesses:     []string{"估值偏高"},
		Risks:          []string{"监管风险"},
		Recommendation: models.RecommendBuy,
		KeyMetrics:     map[string]float64{"ROE": 15.2},
	}
}

func tencent() models.CompanySearchResult {
	return models.CompanySearchResult{
		ID:       "hkex-0700",
		Name:     "腾讯控股",
		Ticker:   "0700",
		Exchange: models.ExchangeHKEX,
		Sector:   "科技",
	}
}

func placeholderFiling(url string) models.ProspectusInfo {
	return models.ProspectusInfo{
		ID:           "hkex-0700-demo",
		CompanyName:  "腾讯控股",
		Ticker:       "0700",
		Exchange:     models.ExchangeHKEX,
		FilingDate:   "2024-01-15",
		DocumentURL:  url,
		DocumentType: models.DocTypeIPO,
	}
}

// registryWith installs res for every exchange so the target company's
// market is always served by the fake.
func registryWith(res resolver.Resolver) *resolver.Registry {
	registry := resolver.NewRegistry()
	for _, exchange := range models.AllExchanges {
		registry.Set(exchange, res)
	}
	return registry
}

func newTestCoordinator(res resolver.Resolver, acq *fakeAcquirer, ana *fakeAnalyzer) *Coordinator {
	return NewCoordinator(registryWith(res), acq, ana)
}

func TestRunCompletedWithSyntheticDocument(t *testing.T) {
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("#")}
		},
	}
	acq := &fakeAcquirer{}
	ana := &fakeAnalyzer{}
	coord := newTestCoordinator(res, acq, ana)

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Workflow != OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", result.Workflow)
	}
	if len(acq.calls) != 0 {
		t.Errorf("placeholder URL should not be fetched, got calls %v", acq.calls)
	}
	if !result.Steps.Prospectus.Synthetic {
		t.Error("expected synthetic document flag")
	}
	if !result.Steps.Prospectus.DocumentProcessed {
		t.Error("expected documentProcessed true")
	}
	if result.Steps.Search.ResultsCount != 1 || result.Steps.Search.Exchange != "hkex" {
		t.Errorf("unexpected search step: %+v", result.Steps.Search)
	}
	if result.Steps.Analysis.Method != "buffett" {
		t.Errorf("expected default buffett method, got %s", result.Steps.Analysis.Method)
	}
	if len(result.Results.Analyses) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(result.Results.Analyses))
	}
	if result.Results.Report == nil || result.Results.Report.Body == "" {
		t.Fatal("expected a rendered report")
	}
	if !result.Steps.Report.Generated || result.Steps.Report.Size != len(result.Results.Report.Body) {
		t.Errorf("unexpected report step: %+v", result.Steps.Report)
	}
	for stage, status := range result.Stages {
		if status != StatusCompleted {
			t.Errorf("stage %s = %s, want completed", stage, status)
		}
	}
	if !strings.Contains(ana.lastRequest.Text, "腾讯控股") {
		t.Error("synthetic document text should mention the company name")
	}
	if ana.lastRequest.ProspectusID != "hkex-0700-demo" {
		t.Errorf("unexpected prospectus id %q", ana.lastRequest.ProspectusID)
	}
}

func TestRunBatchAnalysis(t *testing.T) {
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("#")}
		},
	}
	ana := &fakeAnalyzer{}
	coord := newTestCoordinator(res, &fakeAcquirer{}, ana)

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex", BatchAnalysis: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Steps.Analysis.Method != "batch" {
		t.Errorf("expected batch label, got %s", result.Steps.Analysis.Method)
	}
	if len(ana.batchMethods) != 4 {
		t.Fatalf("expected all 4 methods, got %v", ana.batchMethods)
	}
	if len(result.Results.Analyses) != 4 {
		t.Errorf("expected 4 analyses, got %d", len(result.Results.Analyses))
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	coord := newTestCoordinator(&fakeResolver{}, &fakeAcquirer{}, &fakeAnalyzer{})

	if _, err := coord.Run(context.Background(), Request{Query: "  "}); !errors.Is(err, ErrMissingQuery) {
		t.Errorf("blank query: got %v, want ErrMissingQuery", err)
	}
	if _, err := coord.Run(context.Background(), Request{Query: "tencent", Exchange: "lse"}); !errors.Is(err, ErrUnknownExchange) {
		t.Errorf("unknown exchange: got %v, want ErrUnknownExchange", err)
	}
}

func TestRunNoCompaniesFound(t *testing.T) {
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return nil
		},
	}
	coord := newTestCoordinator(res, &fakeAcquirer{}, &fakeAnalyzer{})

	if _, err := coord.Run(context.Background(), Request{Query: "nonexistent", Exchange: "hkex"}); !errors.Is(err, ErrNoCompanies) {
		t.Errorf("got %v, want ErrNoCompanies", err)
	}
}

func TestRunAnalysisFailureYieldsPartialSuccess(t *testing.T) {
	filings := []models.ProspectusInfo{
		placeholderFiling("#1"),
		placeholderFiling("#2"),
		placeholderFiling("#3"),
		placeholderFiling("#4"),
	}
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return filings
		},
	}
	ana := &fakeAnalyzer{
		analyzeFunc: func(ctx context.Context, req analyzer.Request) (models.AnalysisResult, error) {
			return models.AnalysisResult{}, errors.New("provider unreachable")
		},
	}
	coord := newTestCoordinator(res, &fakeAcquirer{}, ana)

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex"})
	if err != nil {
		t.Fatalf("partial success must not surface as an error: %v", err)
	}

	if result.Workflow != OutcomePartialSuccess {
		t.Fatalf("expected partial_success, got %s", result.Workflow)
	}
	if result.Steps != nil || result.Results != nil {
		t.Error("partial result must omit steps and results")
	}
	if result.TargetCompany == nil || result.TargetCompany.Ticker != "0700" {
		t.Errorf("unexpected target company: %+v", result.TargetCompany)
	}
	if len(result.Prospectuses) != 3 {
		t.Errorf("expected filings truncated to 3, got %d", len(result.Prospectuses))
	}
	if result.Error == "" || !strings.Contains(result.ErrorDetails, "provider unreachable") {
		t.Errorf("expected error markers, got %q / %q", result.Error, result.ErrorDetails)
	}
	if result.Stages[StageAnalyze] != StatusError {
		t.Errorf("analyze stage = %s, want error", result.Stages[StageAnalyze])
	}
	if result.Stages[StageReport] != StatusPending {
		t.Errorf("report stage = %s, want pending", result.Stages[StageReport])
	}
}

func TestRunBatchAllMethodsFailedYieldsPartialSuccess(t *testing.T) {
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("#")}
		},
	}
	ana := &fakeAnalyzer{
		batchFunc: func(ctx context.Context, req analyzer.Request, methods []models.AnalysisMethod) []models.AnalysisResult {
			return nil
		},
	}
	coord := newTestCoordinator(res, &fakeAcquirer{}, ana)

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex", BatchAnalysis: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Workflow != OutcomePartialSuccess {
		t.Fatalf("expected partial_success, got %s", result.Workflow)
	}
}

func TestRunAcquisitionFailureSubstitutesSyntheticDocument(t *testing.T) {
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("https://www1.hkexnews.hk/doc/0700.pdf")}
		},
	}
	acq := &fakeAcquirer{
		acquireFunc: func(ctx context.Context, url string) (*document.Document, error) {
			return nil, errors.New("connection refused")
		},
	}
	ana := &fakeAnalyzer{}
	coord := newTestCoordinator(res, acq, ana)

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Workflow != OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", result.Workflow)
	}
	if len(acq.calls) != 1 {
		t.Fatalf("expected one download attempt, got %d", len(acq.calls))
	}
	if !result.Steps.Prospectus.Synthetic {
		t.Error("expected synthetic fallback after acquisition failure")
	}
	if result.Results.ProspectusData.Metadata.Pages != 200 {
		t.Errorf("expected synthetic metadata, got %+v", result.Results.ProspectusData.Metadata)
	}
}

func TestRunRealDocumentPropagates(t *testing.T) {
	doc := &document.Document{
		Text:       "Prospectus body text",
		Financials: models.FinancialData{Revenue: []float64{5e9}},
		Metadata:   models.DocumentMetadata{Pages: 412, Title: "Global Offering"},
		Size:       1 << 20,
	}
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return []models.CompanySearchResult{tencent()}
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("https://www1.hkexnews.hk/doc/0700.pdf")}
		},
	}
	acq := &fakeAcquirer{
		acquireFunc: func(ctx context.Context, url string) (*document.Document, error) {
			return doc, nil
		},
	}
	coord := newTestCoordinator(res, acq, &fakeAnalyzer{})

	result, err := coord.Run(context.Background(), Request{Query: "腾讯", Exchange: "hkex"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Steps.Prospectus.Synthetic {
		t.Error("real document must not be flagged synthetic")
	}
	summary := result.Results.ProspectusData
	if summary.TextLength != len(doc.Text) || summary.Metadata.Pages != 412 {
		t.Errorf("unexpected document summary: %+v", summary)
	}
}

func TestRunTruncatesSearchResultsInPayload(t *testing.T) {
	var companies []models.CompanySearchResult
	for i := 0; i < 7; i++ {
		c := tencent()
		c.ID = string(rune('a' + i))
		companies = append(companies, c)
	}
	res := &fakeResolver{
		searchFunc: func(ctx context.Context, query string) []models.CompanySearchResult {
			return companies
		},
		filingsFunc: func(ctx context.Context, ticker string) []models.ProspectusInfo {
			return []models.ProspectusInfo{placeholderFiling("#")}
		},
	}
	coord := newTestCoordinator(res, &fakeAcquirer{}, &fakeAnalyzer{})

	result, err := coord.Run(context.Background(), Request{Query: "科技", Exchange: "hkex"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Steps.Search.ResultsCount != 7 {
		t.Errorf("step count should keep the full total, got %d", result.Steps.Search.ResultsCount)
	}
	if len(result.Results.SearchResults) != 5 {
		t.Errorf("payload should carry at most 5 results, got %d", len(result.Results.SearchResults))
	}
}

func TestMergeReportConfigDefaults(t *testing.T) {
	merged := mergeReportConfig(models.ReportConfig{Language: models.LanguageEnglish})
	if merged.Language != models.LanguageEnglish {
		t.Errorf("explicit language overridden: %s", merged.Language)
	}
	if merged.Template != "comprehensive" || merged.Format != "html" || merged.AnalysisDepth != "detailed" {
		t.Errorf("defaults not applied: %+v", merged)
	}
}

func TestSyntheticDocumentRatiosDeriveFromBaseFields(t *testing.T) {
	doc := syntheticDocument(tencent())
	fin := doc.Financials

	if len(fin.Revenue) != 3 || fin.Revenue[0] < fin.Revenue[2] {
		t.Errorf("revenue must be most-recent-first, got %v", fin.Revenue)
	}

	wantROE := fin.NetIncome[0] / *fin.ShareholderEquity * 100
	wantROA := fin.NetIncome[0] / *fin.TotalAssets * 100
	wantD2E := *fin.TotalLiabilities / *fin.ShareholderEquity
	if *fin.ROE != wantROE {
		t.Errorf("ROE = %v, want %v", *fin.ROE, wantROE)
	}
	if *fin.ROA != wantROA {
		t.Errorf("ROA = %v, want %v", *fin.ROA, wantROA)
	}
	if *fin.DebtToEquity != wantD2E {
		t.Errorf("DebtToEquity = %v, want %v", *fin.DebtToEquity, wantD2E)
	}

	again := syntheticDocument(tencent())
	if doc.Text != again.Text || doc.Size != again.Size {
		t.Error("synthetic document must be deterministic for identical inputs")
	}
}
