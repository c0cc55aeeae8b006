package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kanekanefy/StockReport/pkg/core/extract"
	"github.com/kanekanefy/StockReport/pkg/models"
)

// Acquisition stages, reported in AcquisitionError.
const (
	StageDownload = "download"
	StageValidate = "validate"
	StageExtract  = "extract"
)

// AcquisitionError wraps a failure with the pipeline stage it occurred in.
type AcquisitionError struct {
	Stage string
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("document acquisition failed at %s: %v", e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Document is a fully acquired prospectus: raw text plus everything the
// extraction layer pulled out of it.
type Document struct {
	Text       string
	Financials models.FinancialData
	Business   models.BusinessInfo
	Metadata   models.DocumentMetadata
	Size       int64
}

// Acquirer downloads and processes prospectus documents. Acquisition is
// all-or-nothing: a failure at any stage yields no partial Document.
type Acquirer struct {
	client *http.Client
}

// NewAcquirer creates an acquirer with the default 30 second fetch timeout.
func NewAcquirer() *Acquirer {
	return &Acquirer{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Acquire downloads the document at url, validates it is a readable PDF,
// and runs text and structured extraction over it.
func (a *Acquirer) Acquire(ctx context.Context, url string) (*Document, error) {
	data, err := a.download(ctx, url)
	if err != nil {
		return nil, &AcquisitionError{Stage: StageDownload, Err: err}
	}

	if !HasPDFMagic(data) {
		return nil, &AcquisitionError{Stage: StageValidate, Err: fmt.Errorf("payload is not a PDF (%d bytes)", len(data))}
	}

	text, meta, err := parsePDF(data)
	if err != nil {
		return nil, &AcquisitionError{Stage: StageExtract, Err: err}
	}
	if meta.Pages == 0 || len(text) <= minExtractableText {
		return nil, &AcquisitionError{
			Stage: StageValidate,
			Err:   fmt.Errorf("PDF yields no analyzable text (%d pages, %d chars)", meta.Pages, len(text)),
		}
	}

	return &Document{
		Text:       text,
		Financials: extract.ExtractFinancials(text),
		Business:   extract.ExtractBusinessInfo(text),
		Metadata:   meta,
		Size:       int64(len(data)),
	}, nil
}

// download fetches the raw document bytes with a browser user agent. Some
// exchange document servers reject requests without one.
func (a *Acquirer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document server returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	return data, nil
}
