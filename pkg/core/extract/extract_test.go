package extract

import (
	"strings"
	"testing"
)

func TestExtractFinancials_Bilingual(t *testing.T) {
	text := `
Total Revenue: 1,200,000.50
Revenue: 1,100,000
营业收入：1,000,000
Net Income: 100,000
净利润：90,000
Total Assets: 2,000,000
Total Liabilities: 500,000
Shareholders Equity: 1,000,000
Operating Cash Flow: 150,000
`
	data := ExtractFinancials(text)

	if len(data.Revenue) != 3 {
		t.Fatalf("expected 3 revenue periods, got %d (%v)", len(data.Revenue), data.Revenue)
	}
	if data.Revenue[0] != 1200000.50 {
		t.Errorf("expected most specific pattern match first, got %v", data.Revenue[0])
	}
	if data.TotalAssets == nil || *data.TotalAssets != 2000000 {
		t.Errorf("total assets = %v, want 2000000", data.TotalAssets)
	}
	if data.TotalLiabilities == nil || *data.TotalLiabilities != 500000 {
		t.Errorf("total liabilities = %v, want 500000", data.TotalLiabilities)
	}
	if len(data.OperatingCashFlow) != 1 || data.OperatingCashFlow[0] != 150000 {
		t.Errorf("operating cash flow = %v", data.OperatingCashFlow)
	}
}

func TestExtractFinancials_NoRevenueLabel(t *testing.T) {
	data := ExtractFinancials("this document mentions no financial figures at all")
	if data.Revenue != nil {
		t.Errorf("expected absent revenue, got %v", data.Revenue)
	}
	if data.ROE != nil || data.ROA != nil || data.DebtToEquity != nil {
		t.Errorf("expected no derived ratios, got roe=%v roa=%v d2e=%v", data.ROE, data.ROA, data.DebtToEquity)
	}
}

func TestExtractFinancials_EmptyText(t *testing.T) {
	data := ExtractFinancials("")
	if data.Revenue != nil || data.TotalAssets != nil {
		t.Errorf("expected zero-value dataset for empty text, got %+v", data)
	}
}

func TestDeriveRatios(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantROE   float64
		expectROE bool
	}{
		{
			name:      "roe computed",
			text:      "Net Income: 100\nShareholders Equity: 1,000",
			wantROE:   10.0,
			expectROE: true,
		},
		{
			name:      "zero equity yields absent roe",
			text:      "Net Income: 100\nShareholders Equity: 0",
			expectROE: false,
		},
		{
			name:      "missing equity yields absent roe",
			text:      "Net Income: 100",
			expectROE: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := ExtractFinancials(tc.text)
			if tc.expectROE {
				if data.ROE == nil {
					t.Fatal("expected ROE, got nil")
				}
				if *data.ROE != tc.wantROE {
					t.Errorf("ROE = %v, want %v", *data.ROE, tc.wantROE)
				}
			} else if data.ROE != nil {
				t.Errorf("expected absent ROE, got %v", *data.ROE)
			}
		})
	}
}

func TestExtractFinancials_DebtToEquity(t *testing.T) {
	data := ExtractFinancials("Total Liabilities: 500\nShareholders Equity: 1,000")
	if data.DebtToEquity == nil || *data.DebtToEquity != 0.5 {
		t.Errorf("debt/equity = %v, want 0.5", data.DebtToEquity)
	}
}

func TestExtractFinancials_UnparsableNumberDiscarded(t *testing.T) {
	// A match whose capture fails float parsing must be dropped, not NaN.
	data := ExtractFinancials("Revenue: 1,000\nRevenue: ,,,\nRevenue: 2,000")
	for _, v := range data.Revenue {
		if v != v { // NaN check
			t.Fatal("NaN leaked into revenue series")
		}
	}
}

func TestExtractBusinessInfo(t *testing.T) {
	model := strings.Repeat("a diversified operating segment structure ", 5)
	text := "Business Model: " + model + "\n" +
		"Competitive Advantages: " + strings.Repeat("leading brand and distribution network ", 4) + "\n" +
		"Risk Factors: " + strings.Repeat("intense market competition pressure ", 4)

	info := ExtractBusinessInfo(text)
	if info.BusinessModel == "" {
		t.Error("expected business model span")
	}
	if len(info.CompetitiveAdvantages) == 0 {
		t.Error("expected at least one advantage span")
	}
	if len(info.Risks) == 0 {
		t.Error("expected at least one risk span")
	}
}

func TestExtractBusinessInfo_NoMatches(t *testing.T) {
	info := ExtractBusinessInfo("short text")
	if info.BusinessModel != "" || len(info.Risks) != 0 {
		t.Errorf("expected empty info, got %+v", info)
	}
}
