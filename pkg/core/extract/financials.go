// Package extract pulls structured financial and business facts out of
// unstructured prospectus text using ordered bilingual pattern cascades.
// All exported functions are total: absence of a match yields an absent
// field, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// seriesLen caps numeric series at the three most recent reporting periods.
const seriesLen = 3

// Pattern lists are ordered: earlier patterns are more specific label
// variants. Each pattern carries a trailing numeric capture group tolerating
// thousands separators and decimal points.
var (
	revenuePatterns = compileAll(
		`(?i)total revenue[：:\s]+([0-9,]+\.?[0-9]*)`,
		`(?i)revenue[：:\s]+([0-9,]+\.?[0-9]*)`,
		`营业收入[：:\s]+([0-9,]+\.?[0-9]*)`,
		`总收入[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	netIncomePatterns = compileAll(
		`(?i)net income[：:\s]+([0-9,]+\.?[0-9]*)`,
		`(?i)profit for the year[：:\s]+([0-9,]+\.?[0-9]*)`,
		`净利润[：:\s]+([0-9,]+\.?[0-9]*)`,
		`年度利润[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	totalAssetsPatterns = compileAll(
		`(?i)total assets[：:\s]+([0-9,]+\.?[0-9]*)`,
		`总资产[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	totalLiabilitiesPatterns = compileAll(
		`(?i)total liabilities[：:\s]+([0-9,]+\.?[0-9]*)`,
		`(?i)total debt[：:\s]+([0-9,]+\.?[0-9]*)`,
		`总负债[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	equityPatterns = compileAll(
		`(?i)shareholders?['’\s]*equity[：:\s]+([0-9,]+\.?[0-9]*)`,
		`(?i)total equity[：:\s]+([0-9,]+\.?[0-9]*)`,
		`股东权益[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	operatingCashFlowPatterns = compileAll(
		`(?i)operating cash flow[：:\s]+([0-9,]+\.?[0-9]*)`,
		`(?i)cash from operations[：:\s]+([0-9,]+\.?[0-9]*)`,
		`经营活动现金流[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	freeCashFlowPatterns = compileAll(
		`(?i)free cash flow[：:\s]+([0-9,]+\.?[0-9]*)`,
		`自由现金流[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
	currentRatioPatterns = compileAll(
		`(?i)current ratio[：:\s]+([0-9,]+\.?[0-9]*)`,
		`流动比率[：:\s]+([0-9,]+\.?[0-9]*)`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// ExtractFinancials scans text for labeled financial figures and derives the
// standard ratios. Any field without a match stays absent.
func ExtractFinancials(text string) models.FinancialData {
	var data models.FinancialData

	if nums := numbersByPatterns(text, revenuePatterns); len(nums) > 0 {
		data.Revenue = firstN(nums, seriesLen)
	}
	if nums := numbersByPatterns(text, netIncomePatterns); len(nums) > 0 {
		data.NetIncome = firstN(nums, seriesLen)
	}
	if nums := numbersByPatterns(text, totalAssetsPatterns); len(nums) > 0 {
		data.TotalAssets = models.Float(nums[0])
	}
	if nums := numbersByPatterns(text, totalLiabilitiesPatterns); len(nums) > 0 {
		data.TotalLiabilities = models.Float(nums[0])
	}
	if nums := numbersByPatterns(text, equityPatterns); len(nums) > 0 {
		data.ShareholderEquity = models.Float(nums[0])
	}
	if nums := numbersByPatterns(text, operatingCashFlowPatterns); len(nums) > 0 {
		data.OperatingCashFlow = firstN(nums, seriesLen)
	}
	if nums := numbersByPatterns(text, freeCashFlowPatterns); len(nums) > 0 {
		data.FreeCashFlow = firstN(nums, seriesLen)
	}
	if nums := numbersByPatterns(text, currentRatioPatterns); len(nums) > 0 {
		data.CurrentRatio = models.Float(nums[0])
	}

	deriveRatios(&data)
	return data
}

// deriveRatios computes ROE, ROA and debt-to-equity. A zero or absent
// denominator yields an absent ratio, never an error or infinity.
func deriveRatios(data *models.FinancialData) {
	if len(data.NetIncome) > 0 && data.ShareholderEquity != nil && *data.ShareholderEquity != 0 {
		data.ROE = models.Float(data.NetIncome[0] / *data.ShareholderEquity * 100)
	}
	if len(data.NetIncome) > 0 && data.TotalAssets != nil && *data.TotalAssets != 0 {
		data.ROA = models.Float(data.NetIncome[0] / *data.TotalAssets * 100)
	}
	if data.TotalLiabilities != nil && data.ShareholderEquity != nil && *data.ShareholderEquity != 0 {
		data.DebtToEquity = models.Float(*data.TotalLiabilities / *data.ShareholderEquity)
	}
}

// numbersByPatterns collects every numeric match across all patterns in
// document order per pattern. Strings that fail numeric parsing are
// discarded, not propagated as NaN.
func numbersByPatterns(text string, patterns []*regexp.Regexp) []float64 {
	var numbers []float64
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			raw := strings.ReplaceAll(m[1], ",", "")
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				numbers = append(numbers, v)
			}
		}
	}
	return numbers
}

func firstN(nums []float64, n int) []float64 {
	if len(nums) > n {
		nums = nums[:n]
	}
	out := make([]float64, len(nums))
	copy(out, nums)
	return out
}
