package ports

import (
	"context"
	"errors"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// ErrNoImpliedVol indica que el provider no encontró una IV usable cerca
// del strike pedido. El caller debe saltar el contrato, no abortar el run.
var ErrNoImpliedVol = errors.New("no usable implied vol near strike")

// MarketDataProvider obtiene spot, expiries y superficies de opciones del
// data provider externo. Toda la red vive detrás de esta interfaz para que
// el core se pueda testear con fixtures deterministas.
type MarketDataProvider interface {
	// Spot devuelve el último precio del subyacente proxy. Debe ser > 0.
	Spot(ctx context.Context) (float64, error)

	// Expiries devuelve los expiries disponibles dentro de maxDays desde
	// hoy, ordenados ascendente. Lista vacía = no hay datos en la ventana.
	Expiries(ctx context.Context, maxDays int) ([]time.Time, error)

	// OptionSurface devuelve la superficie (calls y puts) del expiry dado.
	OptionSurface(ctx context.Context, expiry time.Time) (domain.ExpirySurface, error)

	// NearestImpliedVol devuelve la IV del call con strike más cercano a
	// strike en el expiry dado. Devuelve ErrNoImpliedVol si no hay ninguna
	// IV positiva disponible.
	NearestImpliedVol(ctx context.Context, expiry time.Time, strike float64) (float64, error)
}
