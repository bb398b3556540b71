package yahoo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/alejandrodnm/gexscan/internal/ports"
)

// Spot devuelve el último precio del símbolo proxy.
func (c *Client) Spot(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s%s%s?range=1d&interval=1m", c.base, chartPath, c.symbol)

	var resp chartResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("yahoo.Spot: %w", err)
	}
	if resp.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo.Spot: API error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("yahoo.Spot: empty chart result for %s", c.symbol)
	}

	spot := resp.Chart.Result[0].Meta.RegularMarketPrice
	if spot <= 0 {
		return 0, fmt.Errorf("yahoo.Spot: non-positive price %v for %s", spot, c.symbol)
	}
	return spot, nil
}

// Expiries devuelve los expiries dentro de maxDays días de calendario
// desde hoy (fecha de la zona de sesión), ascendente. Lista vacía si no
// hay ninguno en la ventana.
func (c *Client) Expiries(ctx context.Context, maxDays int) ([]time.Time, error) {
	chain, err := c.chainFor(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("yahoo.Expiries: %w", err)
	}

	today := dateOnly(time.Now().In(c.loc))
	var out []time.Time
	for _, epoch := range chain.ExpirationDates {
		d := expiryDate(epoch, c.loc)
		// Round absorbe los días de 23/25 horas en cambios de DST
		days := int(math.Round(dateOnly(d).Sub(today).Hours() / 24))
		if days >= 0 && days <= maxDays {
			out = append(out, d)
		}
	}
	return out, nil
}

// OptionSurface devuelve la superficie (calls y puts) del expiry dado.
func (c *Client) OptionSurface(ctx context.Context, expiry time.Time) (domain.ExpirySurface, error) {
	chain, err := c.chainFor(ctx, expiryEpoch(expiry))
	if err != nil {
		return domain.ExpirySurface{}, fmt.Errorf("yahoo.OptionSurface: %w", err)
	}
	if len(chain.Options) == 0 {
		// Expiry sin cadena: superficie vacía, que aguas arriba cuenta
		// como cero medido
		return domain.ExpirySurface{Expiry: expiry}, nil
	}

	slice := chain.Options[0]
	return domain.ExpirySurface{
		Expiry: expiry,
		Calls:  mapContracts(slice.Calls),
		Puts:   mapContracts(slice.Puts),
	}, nil
}

// NearestImpliedVol devuelve la IV del call con strike más cercano al
// pedido. Primero se elige el strike más cercano y después se comprueba
// la IV: si ese call no tiene IV usable se devuelve ports.ErrNoImpliedVol
// en vez de buscar otro strike.
func (c *Client) NearestImpliedVol(ctx context.Context, expiry time.Time, strike float64) (float64, error) {
	chain, err := c.chainFor(ctx, expiryEpoch(expiry))
	if err != nil {
		return 0, fmt.Errorf("yahoo.NearestImpliedVol: %w", err)
	}
	if len(chain.Options) == 0 || len(chain.Options[0].Calls) == 0 {
		return 0, ports.ErrNoImpliedVol
	}

	best := chain.Options[0].Calls[0]
	bestDist := math.Abs(best.Strike - strike)
	for _, call := range chain.Options[0].Calls[1:] {
		if d := math.Abs(call.Strike - strike); d < bestDist {
			best, bestDist = call, d
		}
	}

	if best.ImpliedVolatility <= 0 || math.IsNaN(best.ImpliedVolatility) {
		return 0, ports.ErrNoImpliedVol
	}
	return best.ImpliedVolatility, nil
}

// chainFor devuelve la cadena del expiry (epoch 0 = la vista raíz con la
// lista de expiries), usando la cache si sigue fresca.
func (c *Client) chainFor(ctx context.Context, epoch int64) (optionChainResult, error) {
	c.mu.Lock()
	if cached, ok := c.chains[epoch]; ok && time.Since(cached.fetchedAt) < chainCacheTTL {
		c.mu.Unlock()
		return cached.chain, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s%s%s", c.base, optionsPath, c.symbol)
	if epoch > 0 {
		url = fmt.Sprintf("%s?date=%d", url, epoch)
	}

	var resp optionsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return optionChainResult{}, err
	}
	if resp.OptionChain.Error != nil {
		return optionChainResult{}, fmt.Errorf("API error %s: %s",
			resp.OptionChain.Error.Code, resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return optionChainResult{}, fmt.Errorf("empty option chain for %s", c.symbol)
	}

	chain := resp.OptionChain.Result[0]
	c.mu.Lock()
	c.chains[epoch] = cachedChain{chain: chain, fetchedAt: time.Now()}
	c.mu.Unlock()
	return chain, nil
}
