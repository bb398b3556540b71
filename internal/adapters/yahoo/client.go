package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://query2.finance.yahoo.com"

	chartPath   = "/v8/finance/chart/"
	optionsPath = "/v7/finance/options/"

	// La API de quotes no documenta límites; 4 req/s es conservador.
	requestsPerSec = 4

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	// Las cadenas de opciones se piden dos veces por ciclo (GEX + IV);
	// una cache corta evita el doble fetch sin servir datos viejos.
	chainCacheTTL = 30 * time.Second
)

// Client es el HTTP client del data provider con rate limiting, retries
// y una cache corta de cadenas de opciones. Implementa
// ports.MarketDataProvider para un símbolo proxy fijo (p.ej. SPY).
type Client struct {
	http    *http.Client
	base    string
	symbol  string
	limiter *rate.Limiter
	loc     *time.Location

	mu     sync.Mutex
	chains map[int64]cachedChain // epoch del expiry → cadena cacheada
}

// cachedChain es una cadena de opciones con su instante de fetch.
type cachedChain struct {
	chain     optionChainResult
	fetchedAt time.Time
}

// NewClient crea un Client para el símbolo dado. Con base vacío usa el
// URL de producción. loc es la zona de la sesión (para el corte por días
// de calendario de los expiries).
func NewClient(base, symbol string, loc *time.Location) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		symbol:  symbol,
		limiter: rate.NewLimiter(requestsPerSec, 2),
		loc:     loc,
		chains:  make(map[int64]cachedChain),
	}
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "gexscan/1.0")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by quote API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
