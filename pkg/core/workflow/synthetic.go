package workflow

import (
	"fmt"
	"strings"

	"github.com/kanekanefy/StockReport/pkg/core/document"
	"github.com/kanekanefy/StockReport/pkg/models"
)

// syntheticDocument builds a deterministic stand-in prospectus for a
// company whose real document cannot be fetched. Identical inputs always
// produce identical documents so downstream output stays reproducible.
func syntheticDocument(company models.CompanySearchResult) *document.Document {
	sector := company.Sector
	if sector == "" {
		sector = "多元化"
	}

	text := fmt.Sprintf(`%s 招股说明书

公司概况：
%s是一家在%s交易所上市的%s行业公司。
股票代码：%s

财务状况：
公司近年来保持稳定增长，营业收入持续上升，盈利能力较强。

业务模式：
公司专注于%s业务，拥有良好的市场地位和竞争优势。

风险因素：
市场竞争加剧、政策变化、经济周期波动等因素可能对公司业务产生影响。

投资价值：
公司具备长期增长潜力，值得投资者关注。
`,
		company.Name,
		company.Name,
		strings.ToUpper(string(company.Exchange)),
		sector,
		company.Ticker,
		sector,
	)

	// Series are most-recent-first; ratios derive from the base fields.
	netIncome := []float64{140_000_000, 120_000_000, 100_000_000}
	totalAssets := 2_000_000_000.0
	totalLiabilities := 500_000_000.0
	equity := 1_200_000_000.0
	financials := models.FinancialData{
		Revenue:           []float64{1_200_000_000, 1_100_000_000, 1_000_000_000},
		NetIncome:         netIncome,
		TotalAssets:       models.Float(totalAssets),
		TotalLiabilities:  models.Float(totalLiabilities),
		ShareholderEquity: models.Float(equity),
		ROE:               models.Float(netIncome[0] / equity * 100),
		ROA:               models.Float(netIncome[0] / totalAssets * 100),
		DebtToEquity:      models.Float(totalLiabilities / equity),
	}

	business := models.BusinessInfo{
		BusinessModel: fmt.Sprintf("%s采用多元化经营模式，专注于%s领域的业务发展。", company.Name, sector),
		CompetitiveAdvantages: []string{
			"强大的品牌影响力",
			"完善的销售网络",
			"优秀的管理团队",
		},
		Risks: []string{
			"市场竞争加剧",
			"监管政策变化",
			"经济环境不确定性",
		},
	}

	metadata := models.DocumentMetadata{
		Pages: 200,
		Title: company.Name + "招股说明书",
	}

	return &document.Document{
		Text:       text,
		Financials: financials,
		Business:   business,
		Metadata:   metadata,
		Size:       int64(len(text)),
	}
}
