// Package analyzer runs method-based investment analysis of prospectus
// content through the configured LLM provider and parses the free-text
// replies into structured results.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kanekanefy/StockReport/pkg/core/agent"
	"github.com/kanekanefy/StockReport/pkg/models"
)

// maxPromptText caps how much prospectus text goes into the prompt.
const maxPromptText = 8000

// defaultPacing is the pause between consecutive batch calls, to stay
// under provider rate limits.
const defaultPacing = 1 * time.Second

// agentType keys the analyzer's provider selection in the agent config.
const agentType = "investment_analyzer"

// AnalysisError wraps a provider failure with the method that failed.
type AnalysisError struct {
	Method models.AnalysisMethod
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for method %s: %v", e.Method, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Request carries everything one analysis run needs.
type Request struct {
	ProspectusID string
	Text         string
	Financials   models.FinancialData
	Company      models.CompanySearchResult
	Method       models.AnalysisMethod
}

// PromptExecutor is the slice of the agent manager the analyzer uses.
type PromptExecutor interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

var _ PromptExecutor = (*agent.Manager)(nil)

// Analyzer executes investment analyses against the agent manager.
type Analyzer struct {
	agents PromptExecutor
	pacing time.Duration
}

// New creates an analyzer with the default batch pacing.
func New(agents PromptExecutor) *Analyzer {
	return &Analyzer{agents: agents, pacing: defaultPacing}
}

// NewWithPacing creates an analyzer with a custom inter-call delay. Tests
// pass zero.
func NewWithPacing(agents PromptExecutor, pacing time.Duration) *Analyzer {
	return &Analyzer{agents: agents, pacing: pacing}
}

// Analyze runs one method over the prospectus and returns the structured
// result. Provider failures surface as AnalysisError; parse trouble never
// fails the call, it degrades to neutral defaults instead.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (models.AnalysisResult, error) {
	if !req.Method.IsValid() {
		return models.AnalysisResult{}, &AnalysisError{Method: req.Method, Err: fmt.Errorf("unknown analysis method")}
	}

	prompt := buildAnalysisPrompt(req)
	systemPrompt := systemPromptFor(req.Method)

	reply, err := a.agents.ExecutePrompt(ctx, agentType, prompt, systemPrompt, nil)
	if err != nil {
		return models.AnalysisResult{}, &AnalysisError{Method: req.Method, Err: err}
	}

	return parseAnalysisReply(reply, req.ProspectusID, req.Method), nil
}

// BatchAnalyze runs the given methods sequentially with pacing between
// calls. A failing method is logged and dropped; the remaining results
// keep the input method order.
func (a *Analyzer) BatchAnalyze(ctx context.Context, req Request, methods []models.AnalysisMethod) []models.AnalysisResult {
	if len(methods) == 0 {
		methods = models.AllMethods
	}

	var results []models.AnalysisResult
	for i, method := range methods {
		req.Method = method
		result, err := a.Analyze(ctx, req)
		if err != nil {
			fmt.Printf("[WARNING] Analysis failed for method %s: %v\n", method, err)
			continue
		}
		results = append(results, result)

		if a.pacing > 0 && i < len(methods)-1 {
			select {
			case <-time.After(a.pacing):
			case <-ctx.Done():
				return results
			}
		}
	}
	return results
}

// methodNames maps methods to the display names used in prompts.
var methodNames = map[models.AnalysisMethod]string{
	models.MethodBuffett: "巴菲特价值投资",
	models.MethodLynch:   "彼得·林奇成长股投资",
	models.MethodGraham:  "格雷厄姆安全边际",
	models.MethodFisher:  "菲利普·费舍成长股",
}

// MethodDisplayName returns the bilingual-report display name of a method.
func MethodDisplayName(method models.AnalysisMethod) string {
	if name, ok := methodNames[method]; ok {
		return name
	}
	return "价值投资"
}

var systemPrompts = map[models.AnalysisMethod]string{
	models.MethodBuffett: `你是一个遵循巴菲特价值投资理论的专业投资分析师。请重点关注：
1. 企业的内在价值和安全边际
2. 可持续的竞争优势（护城河）
3. 管理层的能力和诚信
4. 稳定增长的盈利能力
5. 合理的估值水平
请提供客观、专业的投资分析。`,

	models.MethodLynch: `你是一个遵循彼得·林奇成长股投资理论的专业投资分析师。请重点关注：
1. 公司的成长性和增长潜力
2. PEG比率的合理性
3. 行业地位和市场机会
4. 管理层执行力
5. 财务健康状况
请提供客观、专业的投资分析。`,

	models.MethodGraham: `你是一个遵循格雷厄姆安全边际理论的专业投资分析师。请重点关注：
1. 安全边际的充足性
2. 资产负债表的稳健性
3. 盈利的稳定性
4. 估值的保守性
5. 风险控制
请提供客观、专业的投资分析。`,

	models.MethodFisher: `你是一个遵循菲利普·费舍成长股理论的专业投资分析师。请重点关注：
1. 产品和服务的长期前景
2. 研发能力和创新
3. 销售组织的有效性
4. 利润率的改善空间
5. 管理层的长远规划
请提供客观、专业的投资分析。`,
}

func systemPromptFor(method models.AnalysisMethod) string {
	if prompt, ok := systemPrompts[method]; ok {
		return prompt
	}
	return systemPrompts[models.MethodBuffett]
}

// buildAnalysisPrompt assembles the user prompt: company identity, the
// formatted financial snapshot, a bounded prospectus excerpt, and the
// reply layout the parser expects.
func buildAnalysisPrompt(req Request) string {
	textPreview := req.Text
	if len(textPreview) > maxPromptText {
		cut := maxPromptText
		for cut > 0 && !utf8.RuneStart(textPreview[cut]) {
			cut--
		}
		textPreview = textPreview[:cut]
	}

	sector := req.Company.Sector
	if sector == "" {
		sector = "未知"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "请基于%s的投资理论，对以下公司进行投资分析：\n\n", MethodDisplayName(req.Method))
	sb.WriteString("公司信息：\n")
	fmt.Fprintf(&sb, "- 名称：%s\n", req.Company.Name)
	fmt.Fprintf(&sb, "- 股票代码：%s\n", req.Company.Ticker)
	fmt.Fprintf(&sb, "- 交易所：%s\n", req.Company.Exchange)
	fmt.Fprintf(&sb, "- 行业：%s\n\n", sector)
	sb.WriteString("财务数据：\n")
	sb.WriteString(formatFinancialData(req.Financials))
	sb.WriteString("\n招股书内容摘要：\n")
	sb.WriteString(textPreview)
	sb.WriteString(`

请按照以下格式提供分析：

评分：[1-10分]
投资建议：[Buy/Hold/Sell/Avoid]

优势：
- [优势1]
- [优势2]
- [优势3]

劣势：
- [劣势1]
- [劣势2]
- [劣势3]

风险：
- [风险1]
- [风险2]
- [风险3]

关键指标：
- [指标1]：[数值]
- [指标2]：[数值]
- [指标3]：[数值]

总结：
[200字以内的投资总结]
`)
	return sb.String()
}

// notProvided marks absent values in the financial snapshot.
const notProvided = "未提供"

// formatFinancialData renders the extracted snapshot for the prompt, with
// explicit not-provided markers so the model does not invent numbers.
func formatFinancialData(data models.FinancialData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "营业收入：%s\n", formatSeries(data.Revenue))
	fmt.Fprintf(&sb, "净利润：%s\n", formatSeries(data.NetIncome))
	fmt.Fprintf(&sb, "总资产：%s\n", formatScalar(data.TotalAssets))
	fmt.Fprintf(&sb, "总负债：%s\n", formatScalar(data.TotalLiabilities))
	fmt.Fprintf(&sb, "股东权益：%s\n", formatScalar(data.ShareholderEquity))
	fmt.Fprintf(&sb, "ROE：%s\n", formatPercent(data.ROE))
	fmt.Fprintf(&sb, "ROA：%s\n", formatPercent(data.ROA))
	fmt.Fprintf(&sb, "负债权益比：%s\n", formatRatio(data.DebtToEquity))
	fmt.Fprintf(&sb, "流动比率：%s\n", formatRatio(data.CurrentRatio))
	return sb.String()
}

func formatSeries(values []float64) string {
	if len(values) == 0 {
		return notProvided
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = groupDigits(v)
	}
	return strings.Join(parts, ", ")
}

func formatScalar(value *float64) string {
	if value == nil {
		return notProvided
	}
	return groupDigits(*value)
}

func formatPercent(value *float64) string {
	if value == nil {
		return notProvided
	}
	return fmt.Sprintf("%.2f%%", *value)
}

func formatRatio(value *float64) string {
	if value == nil {
		return notProvided
	}
	return fmt.Sprintf("%.2f", *value)
}

// groupDigits renders a number with thousands separators, dropping the
// fraction when it is whole.
func groupDigits(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, ".00")

	intPart := s
	fracPart := ""
	if idx := strings.Index(s, "."); idx != -1 {
		intPart, fracPart = s[:idx], s[idx:]
	}

	negative := strings.HasPrefix(intPart, "-")
	if negative {
		intPart = intPart[1:]
	}

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String() + fracPart
	if negative {
		result = "-" + result
	}
	return result
}
