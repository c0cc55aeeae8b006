package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// mockExecutor scripts provider replies per call.
type mockExecutor struct {
	calls   int
	respond func(call int, prompt string, systemPrompt string) (string, error)
}

func (m *mockExecutor) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	m.calls++
	return m.respond(m.calls, rawPrompt, rawSystemPrompt)
}

const wellFormedReply = `评分：8
投资建议：Buy

优势：
- 强大的品牌护城河
- 持续的现金流
- 行业领先的市场份额

劣势：
- 估值偏高

风险：
- 监管风险
- 行业竞争加剧

关键指标：
- ROE：15.20%
- 负债权益比：0.45
- 营收增长率：12.5%

总结：
公司具备长期竞争优势，适合价值投资者持有。`

func baseRequest() Request {
	return Request{
		ProspectusID: "prospectus-0700",
		Text:         "Business overview and financials.",
		Company: models.CompanySearchResult{
			ID: "hkex-0700", Name: "Tencent Holdings Limited",
			Ticker: "0700", Exchange: models.ExchangeHKEX, Sector: "Technology",
		},
		Method: models.MethodBuffett,
	}
}

func TestAnalyzeParsesWellFormedReply(t *testing.T) {
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		return wellFormedReply, nil
	}}
	a := NewWithPacing(mock, 0)

	result, err := a.Analyze(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 8 {
		t.Errorf("expected score 8, got %d", result.Score)
	}
	if result.Recommendation != models.RecommendBuy {
		t.Errorf("expected Buy, got %s", result.Recommendation)
	}
	if len(result.Strengths) != 3 {
		t.Errorf("expected 3 strengths, got %v", result.Strengths)
	}
	if len(result.Weaknesses) != 1 || result.Weaknesses[0] != "估值偏高" {
		t.Errorf("unexpected weaknesses: %v", result.Weaknesses)
	}
	if got := result.KeyMetrics["ROE"]; got != 15.20 {
		t.Errorf("expected ROE 15.20, got %v", got)
	}
	if got := result.KeyMetrics["负债权益比"]; got != 0.45 {
		t.Errorf("expected 0.45, got %v", got)
	}
	if !strings.Contains(result.Summary, "长期竞争优势") {
		t.Errorf("unexpected summary: %s", result.Summary)
	}
	if result.ID == "" || result.ProspectusID != "prospectus-0700" {
		t.Errorf("identity fields not populated: %+v", result)
	}
	if result.Method != models.MethodBuffett {
		t.Errorf("expected buffett, got %s", result.Method)
	}
}

func TestAnalyzeClampsOutOfRangeScore(t *testing.T) {
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		return "评分：14\n投资建议：Sell\n总结：估值过高。", nil
	}}
	a := NewWithPacing(mock, 0)

	result, err := a.Analyze(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 10 {
		t.Errorf("expected clamp to 10, got %d", result.Score)
	}
	if result.Recommendation != models.RecommendSell {
		t.Errorf("expected Sell, got %s", result.Recommendation)
	}
}

func TestAnalyzeDefaultsOnUnstructuredReply(t *testing.T) {
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		return "The company looks interesting but I cannot follow formats.", nil
	}}
	a := NewWithPacing(mock, 0)

	result, err := a.Analyze(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 5 {
		t.Errorf("expected default score 5, got %d", result.Score)
	}
	if result.Recommendation != models.RecommendHold {
		t.Errorf("expected default Hold, got %s", result.Recommendation)
	}
	if len(result.Strengths) != 1 || result.Strengths[0] != emptyListPlaceholder {
		t.Errorf("expected placeholder strengths, got %v", result.Strengths)
	}
	if result.Summary != defaultSummary {
		t.Errorf("expected default summary, got %s", result.Summary)
	}
}

func TestAnalyzeAcceptsJSONReply(t *testing.T) {
	reply := "```json\n{score: 7, recommendation: 'Buy', strengths: ['稳定增长'], weaknesses: [], risks: ['竞争'], summary: '成长性良好'}\n```"
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		return reply, nil
	}}
	a := NewWithPacing(mock, 0)

	result, err := a.Analyze(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 7 {
		t.Errorf("expected score 7, got %d", result.Score)
	}
	if result.Recommendation != models.RecommendBuy {
		t.Errorf("expected Buy, got %s", result.Recommendation)
	}
	if len(result.Weaknesses) != 1 || result.Weaknesses[0] != emptyListPlaceholder {
		t.Errorf("expected placeholder for empty weaknesses, got %v", result.Weaknesses)
	}
	if result.Summary != "成长性良好" {
		t.Errorf("unexpected summary: %s", result.Summary)
	}
}

func TestAnalyzeRejectsUnknownMethod(t *testing.T) {
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		t.Fatal("provider should not be called")
		return "", nil
	}}
	a := NewWithPacing(mock, 0)

	req := baseRequest()
	req.Method = "momentum"
	if _, err := a.Analyze(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestAnalyzeWrapsProviderError(t *testing.T) {
	providerErr := errors.New("rate limited")
	mock := &mockExecutor{respond: func(int, string, string) (string, error) {
		return "", providerErr
	}}
	a := NewWithPacing(mock, 0)

	_, err := a.Analyze(context.Background(), baseRequest())
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %T", err)
	}
	if analysisErr.Method != models.MethodBuffett {
		t.Errorf("expected buffett in error, got %s", analysisErr.Method)
	}
	if !errors.Is(err, providerErr) {
		t.Error("expected wrapped provider error")
	}
}

func TestBatchAnalyzeDropsFailingMethod(t *testing.T) {
	mock := &mockExecutor{respond: func(call int, prompt string, systemPrompt string) (string, error) {
		if call == 3 {
			return "", errors.New("timeout")
		}
		return wellFormedReply, nil
	}}
	a := NewWithPacing(mock, 0)

	results := a.BatchAnalyze(context.Background(), baseRequest(), nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results with one method dropped, got %d", len(results))
	}
	// graham (third method) failed, so order is buffett, lynch, fisher.
	want := []models.AnalysisMethod{models.MethodBuffett, models.MethodLynch, models.MethodFisher}
	for i, method := range want {
		if results[i].Method != method {
			t.Errorf("result %d: expected %s, got %s", i, method, results[i].Method)
		}
	}
}

func TestBuildAnalysisPromptIncludesIdentityAndMarkers(t *testing.T) {
	req := baseRequest()
	req.Financials = models.FinancialData{
		Revenue: []float64{1200000.50, 1100000},
		ROE:     models.Float(15.2),
	}

	prompt := buildAnalysisPrompt(req)

	for _, want := range []string{
		"巴菲特价值投资",
		"名称：Tencent Holdings Limited",
		"股票代码：0700",
		"营业收入：1,200,000.50, 1,100,000",
		"ROE：15.20%",
		"净利润：未提供",
		"评分：[1-10分]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptTruncatesText(t *testing.T) {
	req := baseRequest()
	req.Text = strings.Repeat("招股书内容。", 4000)

	prompt := buildAnalysisPrompt(req)
	if len(prompt) > maxPromptText+2000 {
		t.Errorf("prompt not truncated, length %d", len(prompt))
	}
	if !strings.HasSuffix(strings.TrimSpace(prompt), "[200字以内的投资总结]") {
		t.Error("prompt layout footer missing after truncation")
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567, "1,234,567"},
		{1200000.5, "1,200,000.50"},
		{-98765.4, "-98,765.40"},
		{999, "999"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMethodDisplayName(t *testing.T) {
	if got := MethodDisplayName(models.MethodLynch); got != "彼得·林奇成长股投资" {
		t.Errorf("unexpected name: %s", got)
	}
	if got := MethodDisplayName("unknown"); got != "价值投资" {
		t.Errorf("expected generic fallback, got %s", got)
	}
}

func TestDefaultedRecordUsesPlaceholderLists(t *testing.T) {
	result := defaultResult("p-1", models.MethodGraham, parseErrorSummary)

	for name, list := range map[string][]string{
		"strengths":  result.Strengths,
		"weaknesses": result.Weaknesses,
		"risks":      result.Risks,
	} {
		if len(list) != 1 || list[0] != "暂无相关信息" {
			t.Errorf("%s = %v, want the placeholder entry", name, list)
		}
	}
	if result.Score != 5 || result.Recommendation != models.RecommendHold {
		t.Errorf("unexpected defaults: score=%d rec=%s", result.Score, result.Recommendation)
	}
	if result.Summary != parseErrorSummary {
		t.Errorf("summary = %q", result.Summary)
	}
}
