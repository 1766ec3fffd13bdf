package hrflow

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// WorkflowResponse is the upstream answer of a workflow call, kept verbatim.
type WorkflowResponse struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r WorkflowResponse) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// RunWorkflow posts body to an automation workflow URL with the client's
// credentials. Non-2xx answers are returned, not turned into errors; only
// transport failures are errors.
func (c *Client) RunWorkflow(ctx context.Context, workflowURL string, body []byte) (WorkflowResponse, error) {
	const op = "workflow.run"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, workflowURL, bytes.NewReader(body))
	if err != nil {
		return WorkflowResponse{}, fmt.Errorf("hrflow %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	raw, status, err := c.send(req, op)
	if err != nil {
		return WorkflowResponse{}, err
	}
	return WorkflowResponse{Status: status, Body: raw}, nil
}
