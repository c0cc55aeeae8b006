package extract

import (
	"regexp"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// Qualitative extraction captures a bounded free-text span (100-500 chars)
// following a label. English spans stop at a period, Chinese spans at 。.
var (
	businessModelPatterns = compileAll(
		`(?i)business model[：:\s]+([^.]{100,500})`,
		`(?i)our business[：:\s]+([^.]{100,500})`,
		`业务模式[：:\s]+([^。]{100,500})`,
	)
	marketPositionPatterns = compileAll(
		`(?i)market position[：:\s]+([^.]{100,500})`,
		`市场地位[：:\s]+([^。]{100,500})`,
	)
	advantagePatterns = compileAll(
		`(?i)competitive advantages?[：:\s]+([^.]{100,500})`,
		`(?i)our strengths?[：:\s]+([^.]{100,500})`,
		`竞争优势[：:\s]+([^。]{100,500})`,
	)
	riskPatterns = compileAll(
		`(?i)risk factors?[：:\s]+([^.]{100,500})`,
		`(?i)risks?[：:\s]+([^.]{100,500})`,
		`风险因素[：:\s]+([^。]{100,500})`,
	)
)

// ExtractBusinessInfo scans text for qualitative business facts. Multiple
// patterns may each contribute spans; they are kept in match order without
// deduplication (the report synthesizer deduplicates downstream).
func ExtractBusinessInfo(text string) models.BusinessInfo {
	var info models.BusinessInfo

	if span := firstTextByPatterns(text, businessModelPatterns); span != "" {
		info.BusinessModel = span
	}
	if span := firstTextByPatterns(text, marketPositionPatterns); span != "" {
		info.MarketPosition = span
	}
	info.CompetitiveAdvantages = allTextByPatterns(text, advantagePatterns)
	info.Risks = allTextByPatterns(text, riskPatterns)

	return info
}

func firstTextByPatterns(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func allTextByPatterns(text string, patterns []*regexp.Regexp) []string {
	var spans []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) >= 2 {
				if span := strings.TrimSpace(m[1]); span != "" {
					spans = append(spans, span)
				}
			}
		}
	}
	return spans
}
