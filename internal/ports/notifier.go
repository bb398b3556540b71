package ports

import (
	"context"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	// Notify muestra el blotter del run. Un run NoData se reporta como
	// "nada que evaluar", nunca como una tabla vacía silenciosa.
	Notify(ctx context.Context, report domain.RunReport) error
}
