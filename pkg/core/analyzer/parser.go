package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kanekanefy/StockReport/pkg/core/utils"
	"github.com/kanekanefy/StockReport/pkg/models"
)

// emptyListPlaceholder fills bullet sections the model left blank.
const emptyListPlaceholder = "暂无相关信息"

// parse failure fallbacks
const (
	defaultSummary     = "分析总结未能正确提取"
	parseErrorSummary  = "分析过程中出现错误，请重试"
	defaultScore       = 5
	minScore, maxScore = 1, 10
)

var (
	scorePattern          = regexp.MustCompile(`评分[：:]\s*\[?(\d+)`)
	recommendationPattern = regexp.MustCompile(`投资建议[：:]\s*\[?(Buy|Hold|Sell|Avoid)`)
	strengthsPattern      = regexp.MustCompile(`优势[：:]([\s\S]*?)劣势[：:]`)
	weaknessesPattern     = regexp.MustCompile(`劣势[：:]([\s\S]*?)风险[：:]`)
	risksPattern          = regexp.MustCompile(`风险[：:]([\s\S]*?)关键指标[：:]`)
	metricsPattern        = regexp.MustCompile(`关键指标[：:]([\s\S]*?)总结[：:]`)
	summaryPattern        = regexp.MustCompile(`总结[：:]([\s\S]*)$`)

	metricValuePattern = regexp.MustCompile(`[^0-9.\-]`)
)

// jsonAnalysisPayload is the shape some models reply with despite the
// requested text layout. SmartParse gives it a chance before the regex
// cascade runs.
type jsonAnalysisPayload struct {
	Score          float64            `json:"score"`
	Recommendation string             `json:"recommendation"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	Risks          []string           `json:"risks"`
	KeyMetrics     map[string]float64 `json:"keyMetrics"`
	Summary        string             `json:"summary"`
}

// parseAnalysisReply converts a model reply to a structured result. Parsing
// is total: whatever the reply looks like, a usable record with neutral
// defaults comes back.
func parseAnalysisReply(reply string, prospectusID string, method models.AnalysisMethod) (result models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[WARNING] Panic while parsing analysis reply: %v\n", r)
			result = defaultResult(prospectusID, method, parseErrorSummary)
		}
	}()

	if fromJSON, ok := parseJSONReply(reply, prospectusID, method); ok {
		return fromJSON
	}

	result = models.AnalysisResult{
		ID:             uuid.NewString(),
		ProspectusID:   prospectusID,
		Method:         method,
		Score:          clampScore(extractScore(reply)),
		Summary:        extractSummary(reply),
		Strengths:      extractListItems(matchSection(strengthsPattern, reply)),
		Weaknesses:     extractListItems(matchSection(weaknessesPattern, reply)),
		Risks:          extractListItems(matchSection(risksPattern, reply)),
		Recommendation: extractRecommendation(reply),
		KeyMetrics:     extractMetrics(matchSection(metricsPattern, reply)),
		CreatedAt:      time.Now(),
	}
	return result
}

// parseJSONReply handles models that ignore the text layout and answer in
// JSON, leniently parsed.
func parseJSONReply(reply string, prospectusID string, method models.AnalysisMethod) (models.AnalysisResult, bool) {
	trimmed := utils.CleanMarkdown(reply)
	if !strings.HasPrefix(trimmed, "{") {
		return models.AnalysisResult{}, false
	}

	var payload jsonAnalysisPayload
	if _, err := utils.SmartParse(trimmed, &payload); err != nil {
		return models.AnalysisResult{}, false
	}
	if payload.Score == 0 && payload.Recommendation == "" && payload.Summary == "" {
		return models.AnalysisResult{}, false
	}

	score := int(payload.Score)
	if payload.Score == 0 {
		score = defaultScore
	}

	recommendation := models.Recommendation(payload.Recommendation)
	switch recommendation {
	case models.RecommendBuy, models.RecommendHold, models.RecommendSell, models.RecommendAvoid:
	default:
		recommendation = models.RecommendHold
	}

	summary := strings.TrimSpace(payload.Summary)
	if summary == "" {
		summary = defaultSummary
	}

	metrics := payload.KeyMetrics
	if metrics == nil {
		metrics = map[string]float64{}
	}

	return models.AnalysisResult{
		ID:             uuid.NewString(),
		ProspectusID:   prospectusID,
		Method:         method,
		Score:          clampScore(score),
		Summary:        summary,
		Strengths:      orPlaceholder(payload.Strengths),
		Weaknesses:     orPlaceholder(payload.Weaknesses),
		Risks:          orPlaceholder(payload.Risks),
		Recommendation: recommendation,
		KeyMetrics:     metrics,
		CreatedAt:      time.Now(),
	}, true
}

func defaultResult(prospectusID string, method models.AnalysisMethod, summary string) models.AnalysisResult {
	return models.AnalysisResult{
		ID:             uuid.NewString(),
		ProspectusID:   prospectusID,
		Method:         method,
		Score:          defaultScore,
		Summary:        summary,
		Strengths:      []string{emptyListPlaceholder},
		Weaknesses:     []string{emptyListPlaceholder},
		Risks:          []string{emptyListPlaceholder},
		Recommendation: models.RecommendHold,
		KeyMetrics:     map[string]float64{},
		CreatedAt:      time.Now(),
	}
}

func extractScore(reply string) int {
	match := scorePattern.FindStringSubmatch(reply)
	if match == nil {
		return defaultScore
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		return defaultScore
	}
	return score
}

func clampScore(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func extractRecommendation(reply string) models.Recommendation {
	match := recommendationPattern.FindStringSubmatch(reply)
	if match == nil {
		return models.RecommendHold
	}
	return models.Recommendation(match[1])
}

func extractSummary(reply string) string {
	match := summaryPattern.FindStringSubmatch(reply)
	if match == nil {
		return defaultSummary
	}
	summary := strings.TrimSpace(match[1])
	if summary == "" {
		return defaultSummary
	}
	return summary
}

func matchSection(pattern *regexp.Regexp, reply string) string {
	match := pattern.FindStringSubmatch(reply)
	if match == nil {
		return ""
	}
	return match[1]
}

// extractListItems pulls dash bullets out of a section. An empty section
// yields the placeholder item so downstream rendering never sees an empty
// list.
func extractListItems(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return []string{emptyListPlaceholder}
	}
	return items
}

func orPlaceholder(items []string) []string {
	var cleaned []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return []string{emptyListPlaceholder}
	}
	return cleaned
}

// extractMetrics parses "- 名称：数值" lines into a metric map. Values keep
// only digits, dots, and minus signs before conversion; lines that do not
// yield a number are dropped.
func extractMetrics(section string) map[string]float64 {
	metrics := map[string]float64{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "：") {
			continue
		}
		parts := strings.SplitN(line, "：", 2)
		key := strings.TrimSpace(strings.TrimPrefix(parts[0], "-"))
		if key == "" {
			continue
		}
		raw := metricValuePattern.ReplaceAllString(parts[1], "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		metrics[key] = value
	}
	return metrics
}
