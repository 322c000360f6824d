package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEngine calls an external generation service over HTTP. The service owns
// the model choice; this client only speaks the request/response contract.
type HTTPEngine struct {
	BaseURL string
	ApiKey  string
	client  *http.Client
}

func NewHTTPEngine(baseURL string, apiKey string, timeout time.Duration) Engine {
	return &HTTPEngine{
		BaseURL: baseURL,
		ApiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *HTTPEngine) Generate(ctx context.Context, genReq *GenerationRequest) (*GenerationResult, error) {
	var result GenerationResult
	if err := e.post(ctx, "/v1/sections/generate", genReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *HTTPEngine) Validate(ctx context.Context, content string, sectionType string) (*ValidationResult, error) {
	payload := map[string]string{
		"content":      content,
		"section_type": sectionType,
	}
	var result ValidationResult
	if err := e.post(ctx, "/v1/sections/validate", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *HTTPEngine) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	bodyJson, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+path, bytes.NewBuffer(bodyJson))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+e.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("error from generation service, code %d, body %s", res.StatusCode, string(resByte))
	}

	return json.Unmarshal(resByte, out)
}
