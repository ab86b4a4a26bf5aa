package mcpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

const defaultCallTimeout = 30 * time.Second

// Session 绑定一个服务端endpoint和单调递增的请求id计数器。
// Call可以被多个goroutine同时调用，id分配是原子的。
type Session struct {
	id        string
	endpoint  string
	transport *httpTransport
	nextID    atomic.Int64
	closed    atomic.Bool
	log       *logrus.Entry
}

// Option 会话选项
type Option func(*Session)

// WithHTTPClient 使用自定义HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		if client != nil {
			s.transport.client = client
		}
	}
}

// WithTimeout 设置每次调用的HTTP超时，超时以TransportError返回
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if timeout > 0 {
			client := *s.transport.client
			client.Timeout = timeout
			s.transport.client = &client
		}
	}
}

// WithLogger 设置日志入口
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Session) {
		if entry != nil {
			s.log = entry
		}
	}
}

// NewSession 创建会话，不发起任何网络请求
func NewSession(endpoint string, opts ...Option) (*Session, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint url required")
	}

	id := uuid.NewString()
	s := &Session{
		id:       id,
		endpoint: endpoint,
		transport: &httpTransport{
			client:   &http.Client{Timeout: defaultCallTimeout},
			endpoint: endpoint,
			traceID:  id,
		},
		log: logrus.StandardLogger().WithField("component", "mcp-session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"session": id, "endpoint": endpoint})
	return s, nil
}

// ID 会话标识，同时作为X-Trace-ID请求头发送
func (s *Session) ID() string {
	return s.id
}

// Endpoint 服务端地址
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Call 发送一次请求并等待响应。
// 失败时返回*TransportError、*ProtocolError、*RPCError或*SequenceError。
func (s *Session) Call(ctx context.Context, method string, params map[string]interface{}) (*models.RPCResponse, error) {
	if s.closed.Load() {
		return nil, &SequenceError{Op: method, State: StateClosed}
	}

	id := s.nextID.Add(1)
	log := s.log.WithFields(logrus.Fields{"method": method, "id": id})

	payload, err := Encode(models.NewRPCRequest(id, method, params))
	if err != nil {
		return nil, err
	}

	log.Debug("[MCP会话] 发送请求")
	start := time.Now()
	body, err := s.transport.post(ctx, payload)
	if err != nil {
		log.WithError(err).Debug("[MCP会话] 请求失败")
		return nil, err
	}

	resp, err := DecodeSSE(body)
	if err != nil {
		log.WithError(err).Debug("[MCP会话] 响应解析失败")
		return nil, err
	}
	if !resp.MatchesID(id) {
		return nil, &ProtocolError{Reason: fmt.Sprintf("response id %s does not match request id %d", resp.ID, id)}
	}
	if resp.Error != nil {
		log.WithField("code", resp.Error.Code).Debug("[MCP会话] 服务端返回错误")
		return nil, &RPCError{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
	}

	log.WithField("elapsed", time.Since(start)).Debug("[MCP会话] 收到响应")
	return resp, nil
}

// Close 断开会话，之后的调用返回SequenceError。可重复调用。
func (s *Session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.log.Debug("[MCP会话] 会话已关闭")
	}
	return nil
}
