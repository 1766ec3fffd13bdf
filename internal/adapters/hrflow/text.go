package hrflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// TagRequest parameterises Tag.
type TagRequest struct {
	Texts        []string
	AlgorithmKey string
	Context      string
	Labels       []string
	OutputLang   string
}

// TagResult is the best label for the first text. Found is false when the
// classifier returned no tag.
type TagResult struct {
	Label string
	ID    int
	Found bool
}

// Tag classifies texts against a fixed label set (top 1).
func (c *Client) Tag(ctx context.Context, r TagRequest) (TagResult, error) {
	const op = "text.tagging"
	body := map[string]any{
		"texts":           r.Texts,
		"algorithm_key":   r.AlgorithmKey,
		"dynamic_context": r.Context,
		"labels":          r.Labels,
		"top_n":           1,
		"output_lang":     r.OutputLang,
	}
	var data []struct {
		Tags []string          `json:"tags"`
		IDs  []json.RawMessage `json:"ids"`
	}
	if err := c.postJSON(ctx, op, "/text/tagging", body, &data); err != nil {
		return TagResult{}, err
	}
	if len(data) == 0 || len(data[0].Tags) == 0 || data[0].Tags[0] == "" {
		return TagResult{}, nil
	}
	res := TagResult{Label: data[0].Tags[0], Found: true}
	if len(data[0].IDs) > 0 {
		res.ID = decodeID(data[0].IDs[0])
	}
	return res, nil
}

// decodeID accepts ids sent as numbers or numeric strings.
func decodeID(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

// OCR extracts the text of a document file.
func (c *Client) OCR(ctx context.Context, path string) (string, error) {
	const op = "text.ocr"
	f, err := os.Open(path) //nolint:gosec // path is a temp file we created
	if err != nil {
		return "", fmt.Errorf("hrflow %s: open: %w", op, err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("hrflow %s: form: %w", op, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("hrflow %s: copy: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("hrflow %s: form: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text/ocr", &buf)
	if err != nil {
		return "", fmt.Errorf("hrflow %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var data struct {
		Text string `json:"text"`
	}
	if err := c.do(req, op, &data); err != nil {
		return "", err
	}
	return data.Text, nil
}
