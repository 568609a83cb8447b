package gateway

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/pkg/logger"
	"ai_mentor_client/pkg/monitoring"
	"ai_mentor_client/pkg/tracing"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type target struct {
	baseURL string
	http    *http.Client
}

// Client 远程学习平台后端的类型化封装，每个方法恰好发出一次 HTTP 请求
type Client struct {
	target atomic.Pointer[target]
}

func New(cfg config.BackendConfig) *Client {
	c := &Client{}
	c.Apply(cfg)
	return c
}

// Apply 替换后端地址与超时，配置热加载时调用；进行中的请求不受影响
func (c *Client) Apply(cfg config.BackendConfig) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c.target.Store(&target{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	})
}

func (c *Client) BaseURL() string {
	return c.target.Load().baseURL
}

// envelope 成功响应 {status, message, data}
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	raw []byte
}

// errorBody 失败响应 {error_code, error_message}，兼容 message/error 字段
type errorBody struct {
	ErrorCode    json.Number `json:"error_code"`
	ErrorMessage string      `json:"error_message"`
	Message      string      `json:"message"`
	Error        string      `json:"error"`
}

type call struct {
	op     string
	method string
	path   string
	token  string
	body   any
	// missOn404 内容获取接口：404 表示尚未生成
	missOn404 bool
	fallback  string
}

func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	t := c.target.Load()
	start := time.Now()

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, &Error{Op: cl.op, Kind: KindServer, Message: cl.fallback, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, t.baseURL+cl.path, reader)
	if err != nil {
		return nil, &Error{Op: cl.op, Kind: KindServer, Message: cl.fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	ctx, span := tracing.StartClientSpan(ctx, cl.op, req)
	req = req.WithContext(ctx)

	env, status, err := c.roundTrip(t.http, req, cl)
	tracing.EndClientSpan(span, status, err)

	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		k, _ := KindOf(err)
		outcome = k.String()
		if k == KindNotGenerated {
			logger.Log.Debug("backend content not generated", zap.String("op", cl.op), zap.String("path", cl.path))
		} else {
			logger.Log.Warn("backend call failed",
				zap.String("op", cl.op),
				zap.String("method", cl.method),
				zap.String("path", cl.path),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
		}
	} else {
		logger.Log.Debug("backend call",
			zap.String("op", cl.op),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
	monitoring.ObserveBackendCall(cl.op, outcome, elapsed)

	return env, err
}

func (c *Client) roundTrip(hc *http.Client, req *http.Request, cl call) (*envelope, int, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, transportError(cl.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(cl.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, statusError(cl, resp.StatusCode, body)
	}

	env := &envelope{raw: body}
	trimmed := bytes.TrimSpace(body)
	// 空响应体或裸数组（旧版后端的列表接口）不经过信封
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return env, resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, resp.StatusCode, &Error{Op: cl.op, Kind: KindInvalidResponse, Status: resp.StatusCode, Message: msgInvalidResponse, Err: err}
	}
	env.raw = body
	return env, resp.StatusCode, nil
}

func transportError(op string, err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Op: op, Kind: KindCanceled, Message: msgCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Op: op, Kind: KindTimeout, Message: msgTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Op: op, Kind: KindTimeout, Message: msgTimeout, Err: err}
	}
	return &Error{Op: op, Kind: KindNetwork, Message: msgNetwork, Err: err}
}

func statusError(cl call, status int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	code, _ := eb.ErrorCode.Int64()

	serverMsg := eb.ErrorMessage
	if serverMsg == "" {
		serverMsg = eb.Message
	}
	if serverMsg == "" {
		serverMsg = eb.Error
	}

	e := &Error{Op: cl.op, Kind: KindServer, Status: status, Code: int(code), Message: serverMsg}
	switch {
	case status == http.StatusUnauthorized && cl.token != "":
		e.Kind = KindUnauthorized
		e.Message = msgUnauthorized
	case status == http.StatusNotFound && cl.missOn404:
		e.Kind = KindNotGenerated
		e.Message = msgNotGenerated
	}
	if e.Message == "" {
		e.Message = cl.fallback
	}
	return e
}

// decodeData 优先解 data 字段；没有 data 时把整个响应体当作负载
func decodeData(op string, env *envelope, out any) error {
	payload := []byte(env.Data)
	if len(payload) == 0 || string(payload) == "null" {
		payload = env.raw
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return invalidResponse(op, nil)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return invalidResponse(op, err)
	}
	return nil
}

// decodeObject 用于必须返回对象的接口：包装响应里 data 为 null 或缺失视为格式错误，
// 只有未包装的响应体才回退为整体解码
func decodeObject(op string, env *envelope, out any) error {
	if string(env.Data) == "null" || (len(env.Data) == 0 && len(env.Status) > 0) {
		return invalidResponse(op, nil)
	}
	return decodeData(op, env, out)
}

func invalidResponse(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInvalidResponse, Message: msgInvalidResponse, Err: err}
}

// ackMessage 纯确认类接口返回的提示信息
func ackMessage(env *envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	var inner struct {
		Message string `json:"message"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &inner) == nil && inner.Message != "" {
		return inner.Message
	}
	return fallback
}
