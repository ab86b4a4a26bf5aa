package mcpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	contentTypeJSON = "application/json"
	acceptSSE       = "application/json, text/event-stream"
	traceIDHeader   = "X-Trace-ID"
)

// httpTransport 单次POST往返，返回原始响应体
type httpTransport struct {
	client   *http.Client
	endpoint string
	traceID  string
}

// post 发送请求；非2xx状态在解析SSE之前直接返回TransportError
func (t *httpTransport) post(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("create request failed: %w", err)}
	}

	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", acceptSSE)
	if t.traceID != "" {
		httpReq.Header.Set(traceIDHeader, t.traceID)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("send request failed: %w", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 64*1024))
		return "", &TransportError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response failed: %w", err)}
	}
	return string(body), nil
}
