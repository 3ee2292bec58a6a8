// Package summarizer proxies text summarization to a HuggingFace inference
// endpoint.
package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/netx"
)

// NoSummary is returned when the model answers with nothing usable.
const NoSummary = "No summary could be generated."

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// HuggingFace calls a summarization model of the inference API.
type HuggingFace struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHuggingFace(url, apiKey string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{url: url, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

type request struct {
	Inputs string `json:"inputs"`
}

type result struct {
	SummaryText string `json:"summary_text"`
}

// Summarize returns the model's summary of text. Transport failures and
// error answers are reported as common.ErrorUpstream.
func (h *HuggingFace) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", common.ErrorValidation)
	}

	header := http.Header{}
	if h.apiKey != "" {
		header.Set("Authorization", "Bearer "+h.apiKey)
	}

	var out []result
	if err := netx.PostJSON(ctx, h.client, h.url, header, request{Inputs: text}, &out); err != nil {
		return "", fmt.Errorf("%w: summarizer: %v", common.ErrorUpstream, err)
	}

	if len(out) == 0 || out[0].SummaryText == "" {
		return NoSummary, nil
	}
	return out[0].SummaryText, nil
}
