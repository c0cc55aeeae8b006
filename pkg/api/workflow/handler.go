package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	coreworkflow "github.com/kanekanefy/StockReport/pkg/core/workflow"
	"github.com/kanekanefy/StockReport/pkg/models"
)

type Response struct {
	Success bool                 `json:"success"`
	Data    *coreworkflow.Result `json:"data"`
}

// Handler holds dependencies for the end-to-end workflow endpoint
type Handler struct {
	Coordinator *coreworkflow.Coordinator
}

// NewHandler creates a new workflow handler
func NewHandler(coordinator *coreworkflow.Coordinator) *Handler {
	return &Handler{Coordinator: coordinator}
}

func (h *Handler) HandleWorkflow(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method == "GET" {
		h.handleCatalog(w)
		return
	}

	var req coreworkflow.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fmt.Printf("[WORKFLOW] Run requested: query=%q exchange=%q batch=%v\n", req.Query, req.Exchange, req.BatchAnalysis)

	result, err := h.Coordinator.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, coreworkflow.ErrMissingQuery), errors.Is(err, coreworkflow.ErrUnknownExchange):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, coreworkflow.ErrNoCompanies), errors.Is(err, coreworkflow.ErrNoFilings):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Investment analysis workflow failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	json.NewEncoder(w).Encode(Response{Success: true, Data: result})
}

func (h *Handler) handleCatalog(w http.ResponseWriter) {
	type step struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	type exchangeInfo struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	type methodInfo struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"workflow": map[string]interface{}{
				"name":        "Investment Analysis Workflow",
				"description": "完整的投资分析工作流程：搜索公司 -> 获取招股书 -> PDF解析 -> AI分析 -> 生成报告",
				"steps": []step{
					{ID: "search", Name: "公司搜索", Description: "根据关键词搜索上市公司"},
					{ID: "filings", Name: "招股书获取", Description: "获取公司招股书文档列表"},
					{ID: "acquire", Name: "PDF解析", Description: "下载并解析招股书PDF文件"},
					{ID: "analyze", Name: "AI分析", Description: "使用投资理论进行智能分析"},
					{ID: "report", Name: "报告生成", Description: "生成专业投资分析报告"},
				},
			},
			"supportedExchanges": []exchangeInfo{
				{Code: "hkex", Name: "港交所", Description: "Hong Kong Exchanges"},
				{Code: "nyse", Name: "纽交所", Description: "New York Stock Exchange"},
				{Code: "nasdaq", Name: "纳斯达克", Description: "NASDAQ"},
				{Code: "sse", Name: "上交所", Description: "Shanghai Stock Exchange"},
				{Code: "szse", Name: "深交所", Description: "Shenzhen Stock Exchange"},
			},
			"analysisMethods": []methodInfo{
				{Code: "buffett", Name: "巴菲特价值投资", Description: "关注内在价值和护城河"},
				{Code: "lynch", Name: "彼得·林奇成长股", Description: "重点分析成长性和PEG比率"},
				{Code: "graham", Name: "格雷厄姆安全边际", Description: "关注安全边际和价值低估"},
				{Code: "fisher", Name: "菲利普·费舍15要点", Description: "全面的定性和定量分析"},
			},
			"defaultConfig": map[string]interface{}{
				"exchange":       "hkex",
				"analysisMethod": models.MethodBuffett,
				"batchAnalysis":  false,
				"reportConfig":   models.DefaultReportConfig(),
			},
		},
	})
}
