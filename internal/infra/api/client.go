package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/pkg/logger"
	"github.com/Yat-Muk/opsdeck/internal/pkg/tlsconfig"
	"github.com/Yat-Muk/opsdeck/internal/pkg/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 單個應答體上限
const maxBodySize = 4 << 20

// 錯誤應答寫入日誌時的截斷長度
const maxLoggedBody = 512

// RunHeader 攜帶操作運行 ID，便於後端日誌關聯
const RunHeader = "X-Opsdeck-Run"

// Client 後端 HTTP 客戶端
type Client struct {
	base             *url.URL
	http             *http.Client
	requestTimeout   time.Duration
	operationTimeout time.Duration
	logger           *zap.Logger
	safe             logger.SafeLogger
	now              func() time.Time
}

// Option 客戶端選項
type Option func(*Client)

// WithHTTPClient 替換底層 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTLSConfig 自定義 TLS (私有 CA 等)，替換默認的 Transport
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		c.http = &http.Client{Transport: newTransport(cfg)}
	}
}

// WithTimeouts 設置查詢與操作的超時上限
func WithTimeouts(request, operation time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.requestTimeout = request
		}
		if operation > 0 {
			c.operationTimeout = operation
		}
	}
}

// WithLogger 設置日誌
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l.Named("api")
		c.safe = logger.NewSafeLogger(c.logger)
	}
}

// WithClock 替換時鐘 (測試用)
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New 創建客戶端
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Validation(err, "invalid api base url %q", baseURL)
	}

	c := &Client{
		base:             u,
		http:             &http.Client{Transport: newTransport(tlsconfig.ClientConfig())},
		requestTimeout:   10 * time.Second,
		operationTimeout: 20 * time.Minute,
		logger:           zap.NewNop(),
		safe:             logger.NewSafeLogger(zap.NewNop()),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newTransport(cfg *tls.Config) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = cfg
	return t
}

// BaseURL 後端地址
func (c *Client) BaseURL() string { return c.base.String() }

// getJSON 查詢類調用
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	op := "GET " + path
	if status < 200 || status > 299 {
		return errors.Backend(op, httpReason(status, body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Decode(op, err)
	}
	return nil
}

// postJSON 操作類調用，非 2xx 時仍嘗試解析應答體
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Validation(err, "encode request for %s", path)
		}
		payload = b
	} else {
		payload = []byte("{}")
	}

	status, body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	op := "POST " + path
	if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
		if status < 200 || status > 299 {
			return errors.Backend(op, httpReason(status, body))
		}
		return errors.Decode(op, decodeErr)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	op := method + " " + path
	target := c.base.JoinPath(path)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return 0, nil, errors.Validation(err, "build request %s", op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := appctx.RunID(ctx); id != "" {
		req.Header.Set(RunHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("請求失敗", zap.String("op", op), zap.Error(err))
		return 0, nil, errors.Transport(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, errors.Transport(op, err)
	}

	c.logger.Debug("請求完成",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 應答體可能帶有主機標識，寫日誌前脫敏
		snippet := body
		if len(snippet) > maxLoggedBody {
			snippet = snippet[:maxLoggedBody]
		}
		c.safe.Warnf("%s 返回 HTTP %d: %s", op, resp.StatusCode, snippet)
	}
	return resp.StatusCode, body, nil
}

func httpReason(status int, body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}
