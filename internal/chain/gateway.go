package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"lend-agent/pkg/errno"
)

const (
	defaultMaxAttempts = 3
	defaultRetryWait   = 1 * time.Second
)

// GatewayConfig 网关配置
type GatewayConfig struct {
	RpcURL          string
	ProxyAddr       string // host:port 格式的 HTTP 代理, 为空则直连
	MaxAttempts     int    // 代理失败重试次数, 默认 3
	RetryWait       time.Duration
	FallbackNoProxy bool // 最后一次重试失败后关闭代理直连
}

// Dialer establishes a Backend for the given endpoint, optionally through a
// forward proxy. Swapped out in tests.
type Dialer func(ctx context.Context, rpcURL string, proxy *url.URL) (Backend, error)

// Gateway 所有链上访问的唯一入口
// It retries proxy transport failures a bounded number of times and, as a
// last resort, disables the proxy for the remainder of the process. Chain
// errors (reverts, malformed responses) pass through untouched.
type Gateway struct {
	cfg  GatewayConfig
	dial Dialer
	log  *zap.Logger

	mu      sync.Mutex
	backend Backend
	proxy   *url.URL
}

// NewGateway dials the RPC endpoint (through the configured proxy, if any)
// and returns a ready Gateway.
func NewGateway(ctx context.Context, cfg GatewayConfig, log *zap.Logger) (*Gateway, error) {
	return newGateway(ctx, cfg, dialBackend, log)
}

func newGateway(ctx context.Context, cfg GatewayConfig, dial Dialer, log *zap.Logger) (*Gateway, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}

	var proxy *url.URL
	if cfg.ProxyAddr != "" {
		u, err := url.Parse("http://" + cfg.ProxyAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: proxy address %q", errno.ErrConfigInvalid, cfg.ProxyAddr)
		}
		proxy = u
	}

	backend, err := dial(ctx, cfg.RpcURL, proxy)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", cfg.RpcURL, err)
	}

	return &Gateway{
		cfg:     cfg,
		dial:    dial,
		log:     log,
		backend: backend,
		proxy:   proxy,
	}, nil
}

func dialBackend(ctx context.Context, rpcURL string, proxy *url.URL) (Backend, error) {
	if proxy == nil {
		return ethclient.DialContext(ctx, rpcURL)
	}

	httpClient := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxy)},
	}
	rpcClient, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(rpcClient), nil
}

// IsProxyError reports whether err is a proxy transport failure. net/http
// tags CONNECT/dial failures through a forward proxy with "proxyconnect".
func IsProxyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "proxyconnect")
}

// Call runs op against the current backend. Proxy transport failures are
// retried up to MaxAttempts with RetryWait in between; on the final failed
// attempt the proxy is disabled for good (if FallbackNoProxy) and op gets
// exactly one more direct try. Any non-proxy error returns immediately.
func (g *Gateway) Call(ctx context.Context, op func(ctx context.Context, b Backend) error) error {
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := op(ctx, g.currentBackend())
		if err == nil {
			return nil
		}
		if !IsProxyError(err) {
			return err
		}
		lastErr = err
		g.log.Warn("🧹 代理请求失败",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.cfg.MaxAttempts),
			zap.Error(err))

		if attempt == g.cfg.MaxAttempts && g.cfg.FallbackNoProxy && g.proxyEnabled() {
			g.log.Info("关闭代理, 直连重试最后一次")
			if err := g.disableProxy(ctx); err != nil {
				return fmt.Errorf("redial without proxy: %w", err)
			}
			err = op(ctx, g.currentBackend())
			if err == nil {
				return nil
			}
			if !IsProxyError(err) {
				return err
			}
			lastErr = err
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.RetryWait):
		}
	}

	return fmt.Errorf("%w: %d attempts: %v", errno.ErrProxyExhausted, g.cfg.MaxAttempts, lastErr)
}

func (g *Gateway) currentBackend() Backend {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backend
}

func (g *Gateway) proxyEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.proxy != nil
}

// disableProxy redials the endpoint directly and drops the proxy for the
// remainder of the process.
func (g *Gateway) disableProxy(ctx context.Context) error {
	backend, err := g.dial(ctx, g.cfg.RpcURL, nil)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.backend = backend
	g.proxy = nil
	g.mu.Unlock()
	return nil
}
