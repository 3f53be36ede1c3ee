package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del pipeline.
type Config struct {
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Risk       RiskConfig       `yaml:"risk"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Classifier ClassifierConfig `yaml:"classifier"`
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Notify     NotifyConfig     `yaml:"notify"`
	Log        LogConfig        `yaml:"log"`
}

// PipelineConfig controla el loop principal.
type PipelineConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxEvents       int `yaml:"max_events"`
	MaxPairsPerRun  int `yaml:"max_pairs_per_run"` // ≤ 0 = sin límite
	SolverTimeoutMs int `yaml:"solver_timeout_ms"`
}

// RiskConfig son los umbrales del gate de ejecución y el sizing.
type RiskConfig struct {
	MinProfitMarginUSD    float64 `yaml:"min_profit_margin_usd"`
	MinLiquidityPerLegUSD float64 `yaml:"min_liquidity_per_leg_usd"`
	RefSizeUSD            float64 `yaml:"ref_size_usd"`
	CapPctOfDepth         float64 `yaml:"cap_pct_of_depth"`
	MaxPositionUSD        float64 `yaml:"max_position_usd"` // ≤ 0 desactiva el tope
}

// AlertsConfig son los umbrales del evaluador de alertas.
type AlertsConfig struct {
	DrawdownPctGt   float64 `yaml:"drawdown_pct_gt"`
	ExecutionRateLt float64 `yaml:"execution_rate_lt"`
	CooldownSeconds int     `yaml:"cooldown_seconds"` // 0 = re-dispara en cada evaluación
}

// ClassifierConfig controla el colaborador de clasificación.
// La API key viene siempre del entorno (GEMINI_API_KEY), nunca del YAML.
type ClassifierConfig struct {
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	APIKey          string  `yaml:"-"`
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	GammaBase  string `yaml:"gamma_base"`
	CLOBBase   string `yaml:"clob_base"`
	GeminiBase string `yaml:"gemini_base"`
	WSURL      string `yaml:"ws_url"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN       string `yaml:"dsn"`        // ruta al archivo SQLite, o ":memory:"
	AuditPath string `yaml:"audit_path"` // archivo JSONL del audit trail
}

// NotifyConfig controla el despacho de alertas. El token y el chat id vienen
// del entorno (TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID).
type NotifyConfig struct {
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben al YAML.
func Load(path string) (*Config, error) {
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Interval devuelve el intervalo entre invocaciones del pipeline.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Pipeline.IntervalSeconds) * time.Second
}

// SolverTimeout devuelve el presupuesto de tiempo del solver.
func (c *Config) SolverTimeout() time.Duration {
	return time.Duration(c.Pipeline.SolverTimeoutMs) * time.Millisecond
}

// AlertCooldown devuelve la ventana de supresión de despacho de alertas.
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.Alerts.CooldownSeconds) * time.Second
}

// Validate rechaza configuraciones incoherentes. Un error aquí es fatal en
// el arranque: ninguna invocación debe correr con umbrales sin sentido.
func (c *Config) Validate() error {
	if c.Risk.MinProfitMarginUSD < 0 {
		return fmt.Errorf("config.Validate: min_profit_margin_usd must be >= 0")
	}
	if c.Risk.CapPctOfDepth <= 0 || c.Risk.CapPctOfDepth > 100 {
		return fmt.Errorf("config.Validate: cap_pct_of_depth must be in (0, 100]")
	}
	if c.Risk.RefSizeUSD <= 0 {
		return fmt.Errorf("config.Validate: ref_size_usd must be > 0")
	}
	if c.Pipeline.IntervalSeconds <= 0 {
		return fmt.Errorf("config.Validate: interval_seconds must be > 0")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config.Validate: log format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	cfg.Classifier.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Notify.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Notify.TelegramChatID = id
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Pipeline.IntervalSeconds <= 0 {
		cfg.Pipeline.IntervalSeconds = 60
	}
	if cfg.Pipeline.MaxEvents <= 0 {
		cfg.Pipeline.MaxEvents = 50
	}
	if cfg.Pipeline.SolverTimeoutMs <= 0 {
		cfg.Pipeline.SolverTimeoutMs = 100
	}
	if cfg.Risk.MinProfitMarginUSD == 0 {
		cfg.Risk.MinProfitMarginUSD = 5
	}
	if cfg.Risk.MinLiquidityPerLegUSD == 0 {
		cfg.Risk.MinLiquidityPerLegUSD = 100
	}
	if cfg.Risk.RefSizeUSD <= 0 {
		cfg.Risk.RefSizeUSD = 100
	}
	if cfg.Risk.CapPctOfDepth <= 0 {
		cfg.Risk.CapPctOfDepth = 50
	}
	if cfg.Alerts.DrawdownPctGt == 0 {
		cfg.Alerts.DrawdownPctGt = 15
	}
	if cfg.Alerts.ExecutionRateLt == 0 {
		cfg.Alerts.ExecutionRateLt = 30
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "arbot.db"
	}
	if cfg.Storage.AuditPath == "" {
		cfg.Storage.AuditPath = "audit.jsonl"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
