package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// Storage persiste el resultado de cada run de evaluación.
type Storage interface {
	// SaveRun persiste los escalares del run y sus records evaluados.
	// Los runs sin records (NoData) no se persisten.
	SaveRun(ctx context.Context, report domain.RunReport) error

	// History devuelve los runs registrados en el rango de tiempo dado,
	// con sus records, ordenados por fecha descendente.
	History(ctx context.Context, from, to time.Time) ([]domain.RunReport, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
