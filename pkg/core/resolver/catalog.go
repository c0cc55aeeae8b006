package resolver

import (
	"strings"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// catalogEntry is one row of a curated market reference table.
type catalogEntry struct {
	Name   string
	Ticker string
	Sector string
}

// Curated reference tables, one per market. These back the fallback tier:
// when a live lookup fails or comes back empty, the query is matched here
// instead so a well-known company always resolves.

var hkexCatalog = []catalogEntry{
	{Name: "Tencent Holdings Limited", Ticker: "0700", Sector: "Technology"},
	{Name: "China Mobile Limited", Ticker: "0941", Sector: "Telecommunications"},
	{Name: "HSBC Holdings plc", Ticker: "0005", Sector: "Financial Services"},
}

var nyseCatalog = []catalogEntry{
	{Name: "Apple Inc.", Ticker: "AAPL", Sector: "Technology"},
	{Name: "Microsoft Corporation", Ticker: "MSFT", Sector: "Technology"},
	{Name: "Amazon.com Inc.", Ticker: "AMZN", Sector: "Consumer Discretionary"},
	{Name: "Alphabet Inc.", Ticker: "GOOGL", Sector: "Technology"},
	{Name: "Tesla Inc.", Ticker: "TSLA", Sector: "Consumer Discretionary"},
	{Name: "Meta Platforms Inc.", Ticker: "META", Sector: "Technology"},
	{Name: "NVIDIA Corporation", Ticker: "NVDA", Sector: "Technology"},
	{Name: "JPMorgan Chase & Co.", Ticker: "JPM", Sector: "Financial Services"},
	{Name: "Johnson & Johnson", Ticker: "JNJ", Sector: "Healthcare"},
	{Name: "Visa Inc.", Ticker: "V", Sector: "Financial Services"},
	{Name: "Procter & Gamble Co.", Ticker: "PG", Sector: "Consumer Staples"},
	{Name: "Mastercard Inc.", Ticker: "MA", Sector: "Financial Services"},
	{Name: "UnitedHealth Group Inc.", Ticker: "UNH", Sector: "Healthcare"},
	{Name: "Home Depot Inc.", Ticker: "HD", Sector: "Consumer Discretionary"},
	{Name: "Bank of America Corp.", Ticker: "BAC", Sector: "Financial Services"},
}

var nasdaqCatalog = []catalogEntry{
	{Name: "Netflix Inc.", Ticker: "NFLX", Sector: "Communication Services"},
	{Name: "PayPal Holdings Inc.", Ticker: "PYPL", Sector: "Financial Services"},
	{Name: "Adobe Inc.", Ticker: "ADBE", Sector: "Technology"},
	{Name: "Cisco Systems Inc.", Ticker: "CSCO", Sector: "Technology"},
	{Name: "PepsiCo Inc.", Ticker: "PEP", Sector: "Consumer Staples"},
	{Name: "Intel Corporation", Ticker: "INTC", Sector: "Technology"},
	{Name: "Comcast Corporation", Ticker: "CMCSA", Sector: "Communication Services"},
	{Name: "Broadcom Inc.", Ticker: "AVGO", Sector: "Technology"},
	{Name: "Texas Instruments Inc.", Ticker: "TXN", Sector: "Technology"},
	{Name: "Qualcomm Inc.", Ticker: "QCOM", Sector: "Technology"},
	{Name: "Amgen Inc.", Ticker: "AMGN", Sector: "Healthcare"},
	{Name: "Starbucks Corporation", Ticker: "SBUX", Sector: "Consumer Discretionary"},
	{Name: "Gilead Sciences Inc.", Ticker: "GILD", Sector: "Healthcare"},
	{Name: "Mondelez International Inc.", Ticker: "MDLZ", Sector: "Consumer Staples"},
	{Name: "Advanced Micro Devices Inc.", Ticker: "AMD", Sector: "Technology"},
}

var sseCatalog = []catalogEntry{
	{Name: "中国石油化工股份有限公司", Ticker: "600028", Sector: "能源"},
	{Name: "中国石油天然气股份有限公司", Ticker: "601857", Sector: "能源"},
	{Name: "中国工商银行股份有限公司", Ticker: "601398", Sector: "金融"},
	{Name: "中国建设银行股份有限公司", Ticker: "601939", Sector: "金融"},
	{Name: "中国农业银行股份有限公司", Ticker: "601288", Sector: "金融"},
	{Name: "中国银行股份有限公司", Ticker: "601988", Sector: "金融"},
	{Name: "贵州茅台酒股份有限公司", Ticker: "600519", Sector: "消费品"},
	{Name: "五粮液股份有限公司", Ticker: "000858", Sector: "消费品"},
	{Name: "中国平安保险(集团)股份有限公司", Ticker: "601318", Sector: "金融"},
	{Name: "招商银行股份有限公司", Ticker: "600036", Sector: "金融"},
	{Name: "中国人寿保险股份有限公司", Ticker: "601628", Sector: "金融"},
	{Name: "中国太保", Ticker: "601601", Sector: "金融"},
	{Name: "上海浦东发展银行股份有限公司", Ticker: "600000", Sector: "金融"},
	{Name: "兴业银行股份有限公司", Ticker: "601166", Sector: "金融"},
	{Name: "民生银行", Ticker: "600016", Sector: "金融"},
	{Name: "中信证券股份有限公司", Ticker: "600030", Sector: "金融"},
	{Name: "海通证券股份有限公司", Ticker: "600837", Sector: "金融"},
	{Name: "华泰证券股份有限公司", Ticker: "601688", Sector: "金融"},
	{Name: "中国联合网络通信股份有限公司", Ticker: "600050", Sector: "通信"},
	{Name: "中国移动通信股份有限公司", Ticker: "600941", Sector: "通信"},
}

var szseCatalog = []catalogEntry{
	{Name: "腾讯控股有限公司", Ticker: "000700", Sector: "科技"},
	{Name: "比亚迪股份有限公司", Ticker: "002594", Sector: "汽车"},
	{Name: "万科企业股份有限公司", Ticker: "000002", Sector: "房地产"},
	{Name: "中国平安保险(集团)股份有限公司", Ticker: "000001", Sector: "金融"},
	{Name: "美的集团股份有限公司", Ticker: "000333", Sector: "家电"},
	{Name: "格力电器股份有限公司", Ticker: "000651", Sector: "家电"},
	{Name: "海康威视数字技术股份有限公司", Ticker: "002415", Sector: "科技"},
	{Name: "大族激光科技产业集团股份有限公司", Ticker: "002008", Sector: "科技"},
	{Name: "深圳迈瑞生物医疗电子股份有限公司", Ticker: "300760", Sector: "医疗"},
	{Name: "宁德时代新能源科技股份有限公司", Ticker: "300750", Sector: "新能源"},
	{Name: "东方财富信息股份有限公司", Ticker: "300059", Sector: "金融科技"},
	{Name: "顺丰控股股份有限公司", Ticker: "002352", Sector: "物流"},
	{Name: "中兴通讯股份有限公司", Ticker: "000063", Sector: "通信"},
	{Name: "京东方科技集团股份有限公司", Ticker: "000725", Sector: "科技"},
	{Name: "立讯精密工业股份有限公司", Ticker: "002475", Sector: "电子"},
	{Name: "温氏食品集团股份有限公司", Ticker: "300498", Sector: "农业"},
	{Name: "牧原食品股份有限公司", Ticker: "002714", Sector: "农业"},
	{Name: "恒瑞医药股份有限公司", Ticker: "600276", Sector: "医药"},
}

// catalogCompanyNames maps tickers back to names for markets where the
// placeholder filing needs a real company name.
var catalogCompanyNames = func() map[string]string {
	m := make(map[string]string)
	for _, table := range [][]catalogEntry{sseCatalog, szseCatalog, hkexCatalog} {
		for _, e := range table {
			if _, ok := m[e.Ticker]; !ok {
				m[e.Ticker] = e.Name
			}
		}
	}
	return m
}()

// searchCatalog filters a curated table by query and converts matches to
// search results for the given exchange.
func searchCatalog(table []catalogEntry, exchange models.Exchange, query string) []models.CompanySearchResult {
	var results []models.CompanySearchResult
	for _, entry := range table {
		if !matchesQuery(entry, query) {
			continue
		}
		results = append(results, models.CompanySearchResult{
			ID:       identityID(exchange, entry.Ticker),
			Name:     entry.Name,
			Ticker:   entry.Ticker,
			Exchange: exchange,
			Sector:   entry.Sector,
		})
	}
	return results
}

// identityID builds the canonical "<exchange>-<ticker>" identity ID.
func identityID(exchange models.Exchange, ticker string) string {
	return string(exchange) + "-" + ticker
}

// companyNameForTicker resolves a curated name for a ticker, or a generic
// placeholder when the ticker is not in any table.
func companyNameForTicker(ticker string) string {
	if name, ok := catalogCompanyNames[ticker]; ok {
		return name
	}
	return "Company " + ticker
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
