package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/kanekanefy/StockReport/pkg/api/analyze"
	"github.com/kanekanefy/StockReport/pkg/api/config"
	"github.com/kanekanefy/StockReport/pkg/api/prospectus"
	"github.com/kanekanefy/StockReport/pkg/api/report"
	"github.com/kanekanefy/StockReport/pkg/api/search"
	apiworkflow "github.com/kanekanefy/StockReport/pkg/api/workflow"
	"github.com/kanekanefy/StockReport/pkg/core/agent"
	"github.com/kanekanefy/StockReport/pkg/core/analyzer"
	"github.com/kanekanefy/StockReport/pkg/core/document"
	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/core/workflow"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize provider manager from config
	configData, err := os.ReadFile("config/models.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to read config/models.yaml: %v\n", err)
		fmt.Println("  Falling back to default provider configuration")
	}
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Wire the pipeline stages
	registry := resolver.NewRegistry()
	acquirer := document.NewAcquirer()
	investmentAnalyzer := analyzer.New(agentMgr)
	coordinator := workflow.NewCoordinator(registry, acquirer, investmentAnalyzer)

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Company search endpoints
	searchHandler := search.NewHandler(registry)
	http.HandleFunc("/api/search", searchHandler.HandleSearch)

	// Prospectus listing endpoints
	prospectusHandler := prospectus.NewHandler(registry)
	http.HandleFunc("/api/prospectus", prospectusHandler.HandleProspectuses)

	// Investment analysis endpoints
	analyzeHandler := analyze.NewHandler(investmentAnalyzer)
	http.HandleFunc("/api/analyze", analyzeHandler.HandleAnalyze)

	// Report synthesis endpoints
	reportHandler := report.NewHandler()
	http.HandleFunc("/api/report", reportHandler.HandleReport)

	// End-to-end workflow endpoint
	workflowHandler := apiworkflow.NewHandler(coordinator)
	http.HandleFunc("/api/workflow", workflowHandler.HandleWorkflow)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - GET/POST /api/search")
	fmt.Println("  - GET/POST /api/prospectus")
	fmt.Println("  - GET/POST /api/analyze")
	fmt.Println("  - POST /api/report")
	fmt.Println("  - GET/POST /api/workflow")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
