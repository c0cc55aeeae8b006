package analyze

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kanekanefy/StockReport/pkg/core/analyzer"
	"github.com/kanekanefy/StockReport/pkg/models"
)

type Request struct {
	ProspectusID   string                     `json:"prospectusId"`
	ProspectusText string                     `json:"prospectusText"`
	FinancialData  models.FinancialData       `json:"financialData"`
	CompanyInfo    models.CompanySearchResult `json:"companyInfo"`
	Method         models.AnalysisMethod      `json:"method"`
	BatchAnalysis  bool                       `json:"batchAnalysis"`
}

type ResponseData struct {
	Analyses    []models.AnalysisResult    `json:"analyses"`
	CompanyInfo models.CompanySearchResult `json:"companyInfo"`
	Method      string                     `json:"method"`
	AnalyzedAt  string                     `json:"analyzedAt"`
	TextLength  int                        `json:"textLength"`
}

type Response struct {
	Success bool         `json:"success"`
	Data    ResponseData `json:"data"`
}

type methodInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	FocusAreas  []string `json:"focusAreas"`
}

// Handler holds dependencies for analysis endpoints
type Handler struct {
	Analyzer *analyzer.Analyzer
}

// NewHandler creates a new analysis handler
func NewHandler(investmentAnalyzer *analyzer.Analyzer) *Handler {
	return &Handler{Analyzer: investmentAnalyzer}
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method == "GET" {
		h.handleMethodCatalog(w, r)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProspectusText == "" {
		http.Error(w, "Prospectus text is required", http.StatusBadRequest)
		return
	}
	if req.CompanyInfo.Name == "" || req.CompanyInfo.Ticker == "" || req.CompanyInfo.Exchange == "" {
		http.Error(w, "Company name, ticker, and exchange are required", http.StatusBadRequest)
		return
	}

	analysisReq := analyzer.Request{
		ProspectusID: req.ProspectusID,
		Text:         req.ProspectusText,
		Financials:   req.FinancialData,
		Company:      req.CompanyInfo,
	}

	var analyses []models.AnalysisResult
	methodLabel := "batch"
	if req.BatchAnalysis {
		analyses = h.Analyzer.BatchAnalyze(r.Context(), analysisReq, models.AllMethods)
		if len(analyses) == 0 {
			http.Error(w, "All analysis methods failed", http.StatusInternalServerError)
			return
		}
	} else {
		method := req.Method
		if method == "" {
			method = models.MethodBuffett
		}
		analysisReq.Method = method
		result, err := h.Analyzer.Analyze(r.Context(), analysisReq)
		if err != nil {
			fmt.Printf("[ANALYZE] Analysis failed for %s: %v\n", req.CompanyInfo.Ticker, err)
			http.Error(w, fmt.Sprintf("Investment analysis failed: %v", err), http.StatusInternalServerError)
			return
		}
		analyses = []models.AnalysisResult{result}
		methodLabel = string(method)
	}

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data: ResponseData{
			Analyses:    analyses,
			CompanyInfo: req.CompanyInfo,
			Method:      methodLabel,
			AnalyzedAt:  time.Now().UTC().Format(time.RFC3339),
			TextLength:  len(req.ProspectusText),
		},
	})
}

func (h *Handler) handleMethodCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := map[models.AnalysisMethod]methodInfo{
		models.MethodBuffett: {
			Name:        "巴菲特价值投资法",
			Description: "关注内在价值、护城河和长期竞争优势",
			FocusAreas:  []string{"企业内在价值评估", "可持续竞争优势", "管理层质量", "财务稳健性", "长期增长潜力"},
		},
		models.MethodLynch: {
			Name:        "彼得·林奇成长股分析",
			Description: "重点分析成长性和PEG比率",
			FocusAreas:  []string{"营收和利润增长", "PEG比率分析", "行业地位", "市场机会", "竞争优势"},
		},
		models.MethodGraham: {
			Name:        "格雷厄姆安全边际分析",
			Description: "关注安全边际和价值低估",
			FocusAreas:  []string{"安全边际计算", "资产负债表分析", "盈利稳定性", "估值保守性", "下行风险控制"},
		},
		models.MethodFisher: {
			Name:        "菲利普·费舍15要点",
			Description: "全面的定性和定量分析",
			FocusAreas:  []string{"产品长期前景", "研发投入", "销售组织", "利润率趋势", "管理层远见"},
		},
	}

	method := models.AnalysisMethod(r.URL.Query().Get("method"))
	if info, ok := catalog[method]; ok {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    info,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"availableMethods":      catalog,
			"defaultMethod":         models.MethodBuffett,
			"supportsBatchAnalysis": true,
		},
	})
}
