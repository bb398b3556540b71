package ports

import (
	"context"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// QuoteProvider carga los mercados binarios cotizados a evaluar.
type QuoteProvider interface {
	// LoadContractQuotes devuelve las cotizaciones a evaluar en este run.
	// Las cotizaciones que no pasan validación se descartan antes de
	// llegar aquí; lista vacía significa "nada que evaluar".
	LoadContractQuotes(ctx context.Context) ([]domain.ContractQuote, error)
}
