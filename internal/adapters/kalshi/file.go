package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/gexscan/internal/domain"
)

// FileProvider implementa ports.QuoteProvider leyendo un archivo JSON con
// mercados mock de Kalshi. El archivo se relee en cada run para poder
// editar los mercados sin reiniciar el scanner.
type FileProvider struct {
	path string
}

// NewFileProvider crea un provider sobre el archivo dado.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// marketsFile es el formato del archivo de mercados mock.
type marketsFile struct {
	Markets []marketEntry `json:"markets"`
}

// marketEntry es el DTO raw de un mercado en el archivo.
type marketEntry struct {
	MarketID     string  `json:"market_id"`
	Title        string  `json:"title"`
	TargetTimeET string  `json:"target_time_et"`
	ThresholdSPX float64 `json:"threshold_spx"`
	Mid          float64 `json:"mid"`
	YesBid       float64 `json:"yes_bid"`
	YesAsk       float64 `json:"yes_ask"`
}

// LoadContractQuotes lee y valida los mercados del archivo. Las entradas
// que violan los invariantes de precio se descartan con warning en vez de
// tumbar el run completo.
func (f *FileProvider) LoadContractQuotes(_ context.Context) ([]domain.ContractQuote, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("kalshi.LoadContractQuotes: read %q: %w", f.path, err)
	}

	var file marketsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("kalshi.LoadContractQuotes: parse %q: %w", f.path, err)
	}

	quotes := make([]domain.ContractQuote, 0, len(file.Markets))
	for _, m := range file.Markets {
		quote := domain.ContractQuote{
			MarketID:     m.MarketID,
			Title:        m.Title,
			TargetTimeET: m.TargetTimeET,
			ThresholdSPX: m.ThresholdSPX,
			Mid:          m.Mid,
			YesBid:       m.YesBid,
			YesAsk:       m.YesAsk,
		}
		if err := quote.Validate(); err != nil {
			slog.Warn("invalid market entry skipped", "err", err)
			continue
		}
		quotes = append(quotes, quote)
	}

	slog.Debug("contract quotes loaded", "path", f.path, "total", len(file.Markets), "valid", len(quotes))
	return quotes, nil
}
