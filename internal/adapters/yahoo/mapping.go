package yahoo

import (
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// mapContracts convierte los contratos raw a puntos de superficie.
// La validación (OI/IV positivas) la hace el agregador de GEX, no aquí.
func mapContracts(raw []optionContract) []domain.OptionSurfacePoint {
	points := make([]domain.OptionSurfacePoint, 0, len(raw))
	for _, r := range raw {
		points = append(points, domain.OptionSurfacePoint{
			Strike:       r.Strike,
			OpenInterest: r.OpenInterest,
			ImpliedVol:   r.ImpliedVolatility,
		})
	}
	return points
}

// expiryDate convierte el epoch de un expiry a su fecha en la zona dada.
// La API publica los expiries como medianoche UTC del día de expiración.
func expiryDate(epoch int64, loc *time.Location) time.Time {
	d := time.Unix(epoch, 0).UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// expiryEpoch es la inversa: la medianoche UTC de la fecha del expiry.
func expiryEpoch(expiry time.Time) int64 {
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// dateOnly trunca un instante a su fecha (medianoche local).
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
