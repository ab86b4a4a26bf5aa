package mcpclient

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

func TestEncodeRoundTrip(t *testing.T) {
	gofakeit.Seed(42)

	for i := 0; i < 20; i++ {
		params := map[string]interface{}{
			"name": gofakeit.Word(),
			"arguments": map[string]interface{}{
				"message": gofakeit.Sentence(8),
				"n":       float64(gofakeit.Number(-1000, 1000)),
				"ok":      gofakeit.Bool(),
			},
		}
		req := models.NewRPCRequest(int64(i+1), "tools/call", params)

		payload, err := Encode(req)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		var decoded map[string]interface{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("payload is not valid JSON: %v", err)
		}
		if decoded["jsonrpc"] != "2.0" {
			t.Errorf("Expected jsonrpc 2.0, got %v", decoded["jsonrpc"])
		}
		if decoded["id"] != float64(i+1) {
			t.Errorf("Expected id %d, got %v", i+1, decoded["id"])
		}
		if decoded["method"] != "tools/call" {
			t.Errorf("Expected method tools/call, got %v", decoded["method"])
		}
		if !reflect.DeepEqual(decoded["params"], params) {
			t.Errorf("params changed in round trip: %v != %v", decoded["params"], params)
		}
	}
}

func TestEncodeNilParamsSendsEmptyObject(t *testing.T) {
	payload, err := Encode(models.NewRPCRequest(int64(1), "tools/list", nil))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	if string(payload) != want {
		t.Errorf("Expected %s, got %s", want, payload)
	}
}

func TestDecodeSSE(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantResult string
		wantCode   int
	}{
		{
			name:       "single event",
			body:       "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{\"ok\":true}}\n\n",
			wantResult: `{"ok":true}`,
		},
		{
			name:       "crlf line endings",
			body:       "event: message\r\ndata: {\"id\":1,\"result\":[]}\r\n\r\n",
			wantResult: `[]`,
		},
		{
			name:       "first data line wins",
			body:       "data: {\"id\":1,\"result\":\"first\"}\ndata: {\"id\":1,\"result\":\"second\"}\n",
			wantResult: `"first"`,
		},
		{
			name:     "error response",
			body:     "data: {\"error\":{\"code\":-32601,\"message\":\"Method not found\"}}\n",
			wantCode: -32601,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeSSE(tt.body)
			if err != nil {
				t.Fatalf("DecodeSSE failed: %v", err)
			}
			if tt.wantCode != 0 {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("Expected error code %d, got %+v", tt.wantCode, resp.Error)
				}
				return
			}
			if string(resp.Result) != tt.wantResult {
				t.Errorf("Expected result %s, got %s", tt.wantResult, resp.Result)
			}
		})
	}
}

func TestDecodeSSEProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"plain json without data line", `{"jsonrpc":"2.0","id":1,"result":{}}`},
		{"data without space", "data:{\"id\":1,\"result\":{}}\n"},
		{"invalid json", "data: {not json}\n"},
		{"both result and error", "data: {\"id\":1,\"result\":{},\"error\":{\"code\":1,\"message\":\"x\"}}\n"},
		{"neither result nor error", "data: {\"id\":1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeSSE(tt.body)
			if resp != nil {
				t.Errorf("Expected no partial result, got %+v", resp)
			}
			var protoErr *ProtocolError
			if !errors.As(err, &protoErr) {
				t.Fatalf("Expected ProtocolError, got %T: %v", err, err)
			}
		})
	}
}

func TestDecodeSSENoDataLineMessage(t *testing.T) {
	_, err := DecodeSSE("event: ping\n\n")
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("Expected ProtocolError, got %v", err)
	}
	if protoErr.Reason != "no data line in SSE body" {
		t.Errorf("Unexpected reason: %s", protoErr.Reason)
	}
}
