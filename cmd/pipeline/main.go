package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/kanekanefy/StockReport/pkg/core/agent"
	"github.com/kanekanefy/StockReport/pkg/core/analyzer"
	"github.com/kanekanefy/StockReport/pkg/core/document"
	"github.com/kanekanefy/StockReport/pkg/core/resolver"
	"github.com/kanekanefy/StockReport/pkg/core/workflow"
	"github.com/kanekanefy/StockReport/pkg/models"
)

func main() {
	query := flag.String("query", "", "company name, ticker, or sector to analyze")
	exchange := flag.String("exchange", "all", "market to search: hkex, nyse, nasdaq, sse, szse, or all")
	method := flag.String("method", "buffett", "analysis method: buffett, lynch, graham, fisher")
	batch := flag.Bool("batch", false, "run all four analysis methods")
	language := flag.String("language", "zh", "report language: zh or en")
	format := flag.String("format", "markdown", "report format: markdown or html")
	output := flag.String("output", "", "file to write the report to (stdout if empty)")
	flag.Parse()

	if *query == "" {
		log.Fatal("Error: -query is required.")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	coordinator := workflow.NewCoordinator(
		resolver.NewRegistry(),
		document.NewAcquirer(),
		analyzer.New(agentMgr),
	)

	fmt.Printf("🚀 Prospectus analysis pipeline starting for %q...\n", *query)

	result, err := coordinator.Run(context.Background(), workflow.Request{
		Query:          *query,
		Exchange:       *exchange,
		AnalysisMethod: models.AnalysisMethod(*method),
		BatchAnalysis:  *batch,
		ReportConfig: models.ReportConfig{
			Language: models.ReportLanguage(*language),
			Format:   *format,
		},
	})
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	if result.Workflow != workflow.OutcomeCompleted {
		fmt.Printf("Pipeline finished with partial success: %s (%s)\n", result.Error, result.ErrorDetails)
		if result.TargetCompany != nil {
			fmt.Printf("  Resolved company: %s (%s on %s)\n",
				result.TargetCompany.Name, result.TargetCompany.Ticker, result.TargetCompany.Exchange)
		}
		for _, filing := range result.Prospectuses {
			fmt.Printf("  Filing: %s %s %s\n", filing.FilingDate, filing.DocumentType, filing.ID)
		}
		os.Exit(1)
	}

	company := result.Steps.Search.TargetCompany
	fmt.Printf("✅ Completed: %s (%s on %s), %d analyses, report %d bytes\n",
		company.Name, company.Ticker, company.Exchange,
		len(result.Results.Analyses), result.Steps.Report.Size)

	body := result.Results.Report.Body
	if *output == "" {
		fmt.Println(body)
		return
	}
	if err := os.WriteFile(*output, []byte(body), 0644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("Report written to %s\n", *output)
}
