package report

import (
	"fmt"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// Absent-value markers, per report language.
const (
	markerZH = "未提供"
	markerEN = "N/A"
)

// formatCurrencyZH scales a raw amount to 亿 with two decimals.
func formatCurrencyZH(value *float64) string {
	if value == nil {
		return markerZH
	}
	return fmt.Sprintf("%.2f亿", *value/1e8)
}

// formatCurrencyEN scales a raw amount to billions of dollars.
func formatCurrencyEN(value *float64) string {
	if value == nil {
		return markerEN
	}
	return fmt.Sprintf("$%.2fB", *value/1e9)
}

func formatSeriesZH(values []float64) string {
	if len(values) == 0 {
		return markerZH
	}
	parts := make([]string, len(values))
	for i, v := range values {
		vv := v
		parts[i] = formatCurrencyZH(&vv)
	}
	return strings.Join(parts, " → ")
}

func formatSeriesEN(values []float64) string {
	if len(values) == 0 {
		return markerEN
	}
	parts := make([]string, len(values))
	for i, v := range values {
		vv := v
		parts[i] = formatCurrencyEN(&vv)
	}
	return strings.Join(parts, " → ")
}

func formatPercent(value *float64, marker string) string {
	if value == nil {
		return marker
	}
	return fmt.Sprintf("%.2f%%", *value)
}

func formatRatio(value *float64, marker string) string {
	if value == nil {
		return marker
	}
	return fmt.Sprintf("%.2f", *value)
}

var methodNamesZH = map[models.AnalysisMethod]string{
	models.MethodBuffett: "巴菲特价值投资",
	models.MethodLynch:   "彼得·林奇成长股",
	models.MethodGraham:  "格雷厄姆安全边际",
	models.MethodFisher:  "菲利普·费舍15要点",
}

var methodNamesEN = map[models.AnalysisMethod]string{
	models.MethodBuffett: "Buffett Value Investing",
	models.MethodLynch:   "Peter Lynch Growth",
	models.MethodGraham:  "Graham Safety Margin",
	models.MethodFisher:  "Philip Fisher 15 Points",
}

func methodNameZH(method models.AnalysisMethod) string {
	if name, ok := methodNamesZH[method]; ok {
		return name
	}
	return string(method)
}

func methodNameEN(method models.AnalysisMethod) string {
	if name, ok := methodNamesEN[method]; ok {
		return name
	}
	return string(method)
}

var recommendationNamesZH = map[models.Recommendation]string{
	models.RecommendBuy:   "买入",
	models.RecommendHold:  "持有",
	models.RecommendSell:  "卖出",
	models.RecommendAvoid: "避免",
}

func recommendationZH(rec models.Recommendation) string {
	if name, ok := recommendationNamesZH[rec]; ok {
		return name
	}
	return string(rec)
}
