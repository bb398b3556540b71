package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	API     APIConfig     `yaml:"api"`
	Markets MarketsConfig `yaml:"markets"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla la selección de trades y el overlay de gamma.
// Los valores son tunables con nombre, no cantidades derivadas.
type ScannerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`

	// Selección de trades (research only)
	MinEdgeNet  float64 `yaml:"min_edge_net"`  // edge mínimo de EV neto de fees
	MaxTrades   int     `yaml:"max_trades"`    // mostrar top-N oportunidades
	ProbClipMin float64 `yaml:"prob_clip_min"`
	ProbClipMax float64 `yaml:"prob_clip_max"`

	// Overlay de gamma (pequeño y acotado para evitar overfitting)
	GEXTiltMaxAbs    float64 `yaml:"gex_tilt_max_abs"`   // tilt relativo máximo +/-
	GEXLookaheadDays int     `yaml:"gex_lookahead_days"` // incluir expiries dentro de N días
	GEXScale         float64 `yaml:"gex_scale"`          // escala del tanh de compresión

	// Mapping SPX->SPY
	SPXToSPYRatio float64 `yaml:"spx_to_spy_ratio"`

	// Aproximación del fee de Kalshi (forma suave del fee schedule)
	FeeK float64 `yaml:"fee_k"`

	// Multiplicador por contrato para el proxy de GEX
	ContractMultiplier float64 `yaml:"contract_multiplier"`
}

// APIConfig contiene el base URL y el símbolo proxy del data provider.
type APIConfig struct {
	QuoteBase   string `yaml:"quote_base"`
	ProxySymbol string `yaml:"proxy_symbol"` // p.ej. "SPY" como proxy de SPX
}

// MarketsConfig controla de dónde se cargan los mercados cotizados.
type MarketsConfig struct {
	Path string `yaml:"path"` // archivo JSON con los mercados mock de Kalshi
}

// StorageConfig controla dónde se persiste el histórico de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// validate rechaza combinaciones de tunables sin sentido.
func (c *Config) validate() error {
	s := c.Scanner
	if s.ProbClipMin <= 0 || s.ProbClipMax >= 1 || s.ProbClipMin >= s.ProbClipMax {
		return fmt.Errorf("prob clip range inválido: [%v, %v]", s.ProbClipMin, s.ProbClipMax)
	}
	if s.GEXTiltMaxAbs < 0 || s.GEXTiltMaxAbs > 0.10 {
		return fmt.Errorf("gex_tilt_max_abs fuera de rango [0, 0.10]: %v", s.GEXTiltMaxAbs)
	}
	if s.FeeK <= 0 {
		return fmt.Errorf("fee_k debe ser positivo: %v", s.FeeK)
	}
	if s.SPXToSPYRatio <= 0 {
		return fmt.Errorf("spx_to_spy_ratio debe ser positivo: %v", s.SPXToSPYRatio)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GEXSCAN_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("GEXSCAN_MARKETS"); v != "" {
		cfg.Markets.Path = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 60
	}
	if cfg.Scanner.MinEdgeNet <= 0 {
		cfg.Scanner.MinEdgeNet = 0.04 // 4% de edge mínimo tras fee estimado
	}
	if cfg.Scanner.MaxTrades <= 0 {
		cfg.Scanner.MaxTrades = 12
	}
	if cfg.Scanner.ProbClipMin <= 0 {
		cfg.Scanner.ProbClipMin = 0.01
	}
	if cfg.Scanner.ProbClipMax <= 0 {
		cfg.Scanner.ProbClipMax = 0.99
	}
	if cfg.Scanner.GEXTiltMaxAbs <= 0 {
		cfg.Scanner.GEXTiltMaxAbs = 0.06 // máx +/- 6% de tilt relativo
	}
	if cfg.Scanner.GEXLookaheadDays <= 0 {
		cfg.Scanner.GEXLookaheadDays = 2
	}
	if cfg.Scanner.GEXScale <= 0 {
		cfg.Scanner.GEXScale = 1e9
	}
	if cfg.Scanner.SPXToSPYRatio <= 0 {
		cfg.Scanner.SPXToSPYRatio = 10.0
	}
	if cfg.Scanner.FeeK <= 0 {
		cfg.Scanner.FeeK = 0.07
	}
	if cfg.Scanner.ContractMultiplier <= 0 {
		cfg.Scanner.ContractMultiplier = 100.0
	}
	if cfg.API.QuoteBase == "" {
		cfg.API.QuoteBase = "https://query2.finance.yahoo.com"
	}
	if cfg.API.ProxySymbol == "" {
		cfg.API.ProxySymbol = "SPY"
	}
	if cfg.Markets.Path == "" {
		cfg.Markets.Path = "mock_kalshi_markets.json"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "gexscan.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
