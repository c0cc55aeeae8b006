// Package report synthesizes the final investment report from completed
// analyses. Synthesis is deterministic: identical inputs, including the
// configured generation time, produce an identical document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/kanekanefy/StockReport/pkg/core/utils"
	"github.com/kanekanefy/StockReport/pkg/models"
)

const (
	topStrengthsLimit = 3
	topRisksLimit     = 5
)

// recommendationOrder fixes the vote-distribution rendering order.
var recommendationOrder = []models.Recommendation{
	models.RecommendBuy,
	models.RecommendHold,
	models.RecommendSell,
	models.RecommendAvoid,
}

// Synthesize builds the report for the given analyses. The body is
// Markdown; with format "html" it is additionally rendered to HTML.
func Synthesize(
	analyses []models.AnalysisResult,
	company models.CompanySearchResult,
	financials models.FinancialData,
	cfg models.ReportConfig,
) (models.Report, error) {
	if cfg.GeneratedAt.IsZero() {
		cfg.GeneratedAt = time.Now()
	}

	var body string
	if cfg.Language == models.LanguageEnglish {
		body = buildEnglishReport(analyses, company, financials, cfg)
	} else {
		body = buildChineseReport(analyses, company, financials, cfg)
	}

	if cfg.Format == "html" {
		html, err := utils.RenderMarkdownHTML(body)
		if err != nil {
			return models.Report{}, fmt.Errorf("failed to render report: %w", err)
		}
		body = html
	}

	return models.Report{
		Body:     body,
		Language: cfg.Language,
		Format:   cfg.Format,
	}, nil
}

func buildChineseReport(
	analyses []models.AnalysisResult,
	company models.CompanySearchResult,
	financials models.FinancialData,
	cfg models.ReportConfig,
) string {
	avg := averageScore(analyses)

	var sb strings.Builder
	sb.WriteString("# 投资分析报告\n\n")
	fmt.Fprintf(&sb, "## %s\n\n", company.Name)
	fmt.Fprintf(&sb, "**%s · %s**\n\n", company.Ticker, strings.ToUpper(string(company.Exchange)))
	if company.Sector != "" {
		fmt.Fprintf(&sb, "行业：%s\n\n", company.Sector)
	}
	fmt.Fprintf(&sb, "报告生成时间：%s\n\n", cfg.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "综合评分：**%.1f/10**\n\n", avg)

	sb.WriteString("## 执行摘要\n\n")
	if len(analyses) == 0 {
		sb.WriteString("暂无分析数据可用于生成摘要。\n\n")
	} else {
		methods := make([]string, len(analyses))
		for i, a := range analyses {
			methods[i] = methodNameZH(a.Method)
		}
		mostCommon := mostCommonRecommendation(analyses)
		fmt.Fprintf(&sb, "**综合评估：**基于%s等投资理论的综合分析，该公司获得平均评分 %.1f/10分。\n\n",
			strings.Join(methods, "、"), avg)
		fmt.Fprintf(&sb, "**主要建议：**多数分析方法建议 %s。\n\n", recommendationZH(mostCommon))
		fmt.Fprintf(&sb, "**投资亮点：**%s。\n\n", strings.Join(topStrengths(analyses), "、"))
		fmt.Fprintf(&sb, "**主要风险：**%s。\n\n", strings.Join(topRisks(analyses), "、"))
	}

	sb.WriteString("## 财务概览\n\n")
	sb.WriteString("| 指标 | 数值 |\n|---|---|\n")
	fmt.Fprintf(&sb, "| 营业收入 | %s |\n", formatSeriesZH(financials.Revenue))
	fmt.Fprintf(&sb, "| 净利润 | %s |\n", formatSeriesZH(financials.NetIncome))
	fmt.Fprintf(&sb, "| 总资产 | %s |\n", formatCurrencyZH(financials.TotalAssets))
	fmt.Fprintf(&sb, "| 股东权益回报率 | %s |\n", formatPercent(financials.ROE, markerZH))
	fmt.Fprintf(&sb, "| 资产回报率 | %s |\n", formatPercent(financials.ROA, markerZH))
	fmt.Fprintf(&sb, "| 负债权益比 | %s |\n\n", formatRatio(financials.DebtToEquity, markerZH))

	sb.WriteString("## 详细分析\n\n")
	for _, a := range analyses {
		fmt.Fprintf(&sb, "### %s分析\n\n", methodNameZH(a.Method))
		fmt.Fprintf(&sb, "评分：**%d/10** · 建议：**%s**\n\n", a.Score, recommendationZH(a.Recommendation))
		sb.WriteString("**优势**\n\n")
		writeBullets(&sb, a.Strengths)
		sb.WriteString("**劣势**\n\n")
		writeBullets(&sb, a.Weaknesses)
		fmt.Fprintf(&sb, "**分析总结**\n\n%s\n\n", a.Summary)
	}

	sb.WriteString("## 投资建议\n\n")
	for _, rec := range recommendationOrder {
		count := countRecommendation(analyses, rec)
		if count > 0 {
			fmt.Fprintf(&sb, "- %s：%d票\n", recommendationZH(rec), count)
		}
	}
	sb.WriteString("\n### 最终建议\n\n")
	sb.WriteString(finalRecommendationZH(analyses))
	sb.WriteString("\n\n")

	sb.WriteString("## 风险评估\n\n")
	sb.WriteString("### 主要风险因素\n\n")
	writeBullets(&sb, topRisks(analyses))
	sb.WriteString("### 风险缓解建议\n\n")
	writeBullets(&sb, []string{
		"建议投资者根据自身风险承受能力合理配置资产",
		"密切关注公司经营状况和行业发展趋势",
		"定期审视投资组合，适时调整持仓比例",
		"充分了解相关法律法规和市场规则",
	})

	sb.WriteString("---\n\n")
	sb.WriteString("免责声明：本报告仅供参考，不构成投资建议。投资有风险，入市需谨慎。\n\n")
	sb.WriteString("数据来源：招股书分析 | 分析方法：多种投资理论综合分析\n")

	return sb.String()
}

func buildEnglishReport(
	analyses []models.AnalysisResult,
	company models.CompanySearchResult,
	financials models.FinancialData,
	cfg models.ReportConfig,
) string {
	avg := averageScore(analyses)

	var sb strings.Builder
	sb.WriteString("# Investment Analysis Report\n\n")
	fmt.Fprintf(&sb, "## %s\n\n", company.Name)
	fmt.Fprintf(&sb, "**%s · %s**\n\n", company.Ticker, strings.ToUpper(string(company.Exchange)))
	if company.Sector != "" {
		fmt.Fprintf(&sb, "Sector: %s\n\n", company.Sector)
	}
	fmt.Fprintf(&sb, "Report Generated: %s\n\n", cfg.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Overall Score: **%.1f/10**\n\n", avg)

	sb.WriteString("## Executive Summary\n\n")
	if len(analyses) == 0 {
		sb.WriteString("No analysis data available for summary generation.\n\n")
	} else {
		methods := make([]string, len(analyses))
		for i, a := range analyses {
			methods[i] = methodNameEN(a.Method)
		}
		mostCommon := mostCommonRecommendation(analyses)
		fmt.Fprintf(&sb, "**Overall Assessment:** Based on comprehensive analysis using %s investment theories, the company received an average score of %.1f/10.\n\n",
			strings.Join(methods, ", "), avg)
		fmt.Fprintf(&sb, "**Primary Recommendation:** Majority of analysis methods suggest %s.\n\n", mostCommon)
		fmt.Fprintf(&sb, "**Key Strengths:** %s.\n\n", strings.Join(topStrengths(analyses), ", "))
		fmt.Fprintf(&sb, "**Major Risks:** %s.\n\n", strings.Join(topRisks(analyses), ", "))
	}

	sb.WriteString("## Financial Overview\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Revenue | %s |\n", formatSeriesEN(financials.Revenue))
	fmt.Fprintf(&sb, "| Net Income | %s |\n", formatSeriesEN(financials.NetIncome))
	fmt.Fprintf(&sb, "| Total Assets | %s |\n", formatCurrencyEN(financials.TotalAssets))
	fmt.Fprintf(&sb, "| ROE | %s |\n", formatPercent(financials.ROE, markerEN))
	fmt.Fprintf(&sb, "| ROA | %s |\n", formatPercent(financials.ROA, markerEN))
	fmt.Fprintf(&sb, "| Debt/Equity | %s |\n\n", formatRatio(financials.DebtToEquity, markerEN))

	sb.WriteString("## Detailed Analysis\n\n")
	for _, a := range analyses {
		fmt.Fprintf(&sb, "### %s Analysis\n\n", methodNameEN(a.Method))
		fmt.Fprintf(&sb, "Score: **%d/10** · Recommendation: **%s**\n\n", a.Score, a.Recommendation)
		sb.WriteString("**Strengths**\n\n")
		writeBullets(&sb, a.Strengths)
		sb.WriteString("**Weaknesses**\n\n")
		writeBullets(&sb, a.Weaknesses)
		fmt.Fprintf(&sb, "**Summary**\n\n%s\n\n", a.Summary)
	}

	sb.WriteString("## Investment Recommendation\n\n")
	for _, rec := range recommendationOrder {
		count := countRecommendation(analyses, rec)
		if count > 0 {
			fmt.Fprintf(&sb, "- %s: %d votes\n", rec, count)
		}
	}
	sb.WriteString("\n### Final Recommendation\n\n")
	sb.WriteString(finalRecommendationEN(analyses))
	sb.WriteString("\n\n")

	sb.WriteString("## Risk Assessment\n\n")
	sb.WriteString("### Major Risk Factors\n\n")
	writeBullets(&sb, topRisks(analyses))
	sb.WriteString("### Risk Mitigation Recommendations\n\n")
	writeBullets(&sb, []string{
		"Allocate assets according to your risk tolerance",
		"Monitor company operations and industry trends closely",
		"Regularly review and adjust portfolio positions",
		"Understand relevant laws, regulations, and market rules",
	})

	sb.WriteString("---\n\n")
	sb.WriteString("Disclaimer: This report is for reference only and does not constitute investment advice. Investment involves risks.\n\n")
	sb.WriteString("Data Source: Prospectus Analysis | Method: Multi-theory Investment Analysis\n")

	return sb.String()
}

func writeBullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func averageScore(analyses []models.AnalysisResult) float64 {
	if len(analyses) == 0 {
		return 0
	}
	sum := 0
	for _, a := range analyses {
		sum += a.Score
	}
	return float64(sum) / float64(len(analyses))
}

// mostCommonRecommendation returns the most frequent verdict. Ties break
// toward the verdict encountered first in the analyses slice.
func mostCommonRecommendation(analyses []models.AnalysisResult) models.Recommendation {
	counts := make(map[models.Recommendation]int)
	var order []models.Recommendation
	for _, a := range analyses {
		if counts[a.Recommendation] == 0 {
			order = append(order, a.Recommendation)
		}
		counts[a.Recommendation]++
	}

	var best models.Recommendation
	bestCount := 0
	for _, rec := range order {
		if counts[rec] > bestCount {
			best = rec
			bestCount = counts[rec]
		}
	}
	return best
}

func countRecommendation(analyses []models.AnalysisResult, rec models.Recommendation) int {
	count := 0
	for _, a := range analyses {
		if a.Recommendation == rec {
			count++
		}
	}
	return count
}

// topStrengths collects distinct strengths across all analyses in first
// occurrence order, capped.
func topStrengths(analyses []models.AnalysisResult) []string {
	return dedupLimit(collect(analyses, func(a models.AnalysisResult) []string { return a.Strengths }), topStrengthsLimit)
}

// topRisks collects distinct risks across all analyses, capped.
func topRisks(analyses []models.AnalysisResult) []string {
	return dedupLimit(collect(analyses, func(a models.AnalysisResult) []string { return a.Risks }), topRisksLimit)
}

func collect(analyses []models.AnalysisResult, pick func(models.AnalysisResult) []string) []string {
	var all []string
	for _, a := range analyses {
		all = append(all, pick(a)...)
	}
	return all
}

func dedupLimit(items []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func finalRecommendationZH(analyses []models.AnalysisResult) string {
	if len(analyses) == 0 {
		return "暂无分析数据，无法给出最终建议。"
	}
	avg := averageScore(analyses)
	rec := recommendationZH(mostCommonRecommendation(analyses))

	switch {
	case avg >= 7:
		return fmt.Sprintf("基于综合分析，该公司展现出良好的投资价值，建议%s。投资者可考虑将其纳入投资组合，但仍需关注相关风险因素。", rec)
	case avg >= 5:
		return fmt.Sprintf("该公司表现中等，存在一定投资机会但风险并存。建议投资者谨慎对待，可考虑%s，但应密切关注公司动态。", rec)
	default:
		return fmt.Sprintf("基于当前分析，该公司投资价值相对有限，建议投资者%s。如考虑投资，需要更深入的尽职调查。", rec)
	}
}

func finalRecommendationEN(analyses []models.AnalysisResult) string {
	if len(analyses) == 0 {
		return "No analysis data available for a final recommendation."
	}
	avg := averageScore(analyses)
	rec := mostCommonRecommendation(analyses)

	switch {
	case avg >= 7:
		return fmt.Sprintf("Based on comprehensive analysis, the company demonstrates good investment value. We recommend %s. Investors may consider including it in their portfolio while monitoring risk factors.", rec)
	case avg >= 5:
		return fmt.Sprintf("The company shows moderate performance with both opportunities and risks. We suggest %s with caution and close monitoring of company developments.", rec)
	default:
		return fmt.Sprintf("Based on current analysis, the company's investment value is relatively limited. We recommend %s. Further due diligence is required if considering investment.", rec)
	}
}
