package report

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	corereport "github.com/kanekanefy/StockReport/pkg/core/report"
	"github.com/kanekanefy/StockReport/pkg/models"
)

type Request struct {
	Analyses      []models.AnalysisResult    `json:"analyses"`
	CompanyInfo   models.CompanySearchResult `json:"companyInfo"`
	FinancialData models.FinancialData       `json:"financialData"`
	Config        models.ReportConfig        `json:"config"`
}

type Stats struct {
	TotalAnalyses            int                     `json:"totalAnalyses"`
	AverageScore             float64                 `json:"averageScore"`
	MostCommonRecommendation models.Recommendation   `json:"mostCommonRecommendation"`
	AnalysisMethodsUsed      []models.AnalysisMethod `json:"analysisMethodsUsed"`
	ReportSize               int                     `json:"reportSize"`
	GeneratedAt              string                  `json:"generatedAt"`
}

type ResponseData struct {
	Report      models.Report              `json:"report"`
	Config      models.ReportConfig        `json:"config"`
	Stats       Stats                      `json:"stats"`
	CompanyInfo models.CompanySearchResult `json:"companyInfo"`
}

type Response struct {
	Success bool         `json:"success"`
	Data    ResponseData `json:"data"`
}

// Handler serves report synthesis endpoints. Synthesis is pure, so the
// handler carries no dependencies.
type Handler struct{}

// NewHandler creates a new report handler
func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Analyses) == 0 {
		http.Error(w, "Analyses array is required and cannot be empty", http.StatusBadRequest)
		return
	}
	if req.CompanyInfo.Name == "" || req.CompanyInfo.Ticker == "" || req.CompanyInfo.Exchange == "" {
		http.Error(w, "Company info with name, ticker, and exchange is required", http.StatusBadRequest)
		return
	}
	for _, analysis := range req.Analyses {
		if analysis.ID == "" || analysis.Method == "" || analysis.Recommendation == "" {
			http.Error(w, "Invalid analysis result format", http.StatusBadRequest)
			return
		}
	}

	cfg := fillConfigDefaults(req.Config)

	rendered, err := corereport.Synthesize(req.Analyses, req.CompanyInfo, req.FinancialData, cfg)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate investment report: %v", err), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data: ResponseData{
			Report: rendered,
			Config: cfg,
			Stats: Stats{
				TotalAnalyses:            len(req.Analyses),
				AverageScore:             roundScore(averageScore(req.Analyses)),
				MostCommonRecommendation: mostCommonRecommendation(req.Analyses),
				AnalysisMethodsUsed:      methodsUsed(req.Analyses),
				ReportSize:               len(rendered.Body),
				GeneratedAt:              time.Now().UTC().Format(time.RFC3339),
			},
			CompanyInfo: req.CompanyInfo,
		},
	})
}

func fillConfigDefaults(cfg models.ReportConfig) models.ReportConfig {
	defaults := models.DefaultReportConfig()
	if cfg.Template == "" {
		cfg.Template = defaults.Template
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.AnalysisDepth == "" {
		cfg.AnalysisDepth = defaults.AnalysisDepth
	}
	return cfg
}

func averageScore(analyses []models.AnalysisResult) float64 {
	total := 0
	for _, a := range analyses {
		total += a.Score
	}
	return float64(total) / float64(len(analyses))
}

func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}

func mostCommonRecommendation(analyses []models.AnalysisResult) models.Recommendation {
	counts := make(map[models.Recommendation]int)
	var order []models.Recommendation
	for _, a := range analyses {
		if counts[a.Recommendation] == 0 {
			order = append(order, a.Recommendation)
		}
		counts[a.Recommendation]++
	}
	best := order[0]
	for _, rec := range order {
		if counts[rec] > counts[best] {
			best = rec
		}
	}
	return best
}

func methodsUsed(analyses []models.AnalysisResult) []models.AnalysisMethod {
	seen := make(map[models.AnalysisMethod]bool)
	var methods []models.AnalysisMethod
	for _, a := range analyses {
		if !seen[a.Method] {
			seen[a.Method] = true
			methods = append(methods, a.Method)
		}
	}
	return methods
}
