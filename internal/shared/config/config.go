package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	ctopics "github.com/radieske/sports-odds-gateway/pkg/contracts/topics"
)

// minStaleTTL é o piso da janela de tolerância a dados antigos
const minStaleTTL = 10 * time.Second

// Modos de envio da chave da API
const (
	KeyModeQuery  = "query"
	KeyModeHeader = "header"
)

// Config centraliza variáveis de ambiente e parâmetros de execução dos serviços
// Inclui o fornecedor de odds, TTLs, conexões, tópicos e portas
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // ex: "odds-gateway", "supplier-simulator"

	// Fornecedor de odds
	OddsAPIBaseURL    string
	OddsAPIKey        string // vazio desliga a busca real (dados sintéticos)
	OddsAPIKeyMode    string // "query" | "header"
	OddsAPIKeyHeader  string
	OddsAPIRegions    string
	OddsAPIMarkets    string
	OddsAPIOddsFormat string
	OddsAPIDateFormat string
	OddsAPITimeout    time.Duration
	DefaultSport      string

	// Janelas do cache
	FreshTTL time.Duration
	StaleTTL time.Duration // já normalizado: max(stale, fresh, 10s)

	// Quando verdadeiro, a camada HTTP troca UpstreamUnavailable por dados sintéticos
	SyntheticOnFailure bool

	// Dependências opcionais (vazio desliga a integração)
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers string // "a:9092,b:9092"

	// Tópicos/canais
	TopicOddsSnapshots string
	RedisPubSubChannel string

	// Supplier mock
	SupplierFailRate float64

	// Portas do serviço atual
	HTTPPort    string // Porta pública (ex.: API REST)
	MetricsPort string // Porta exclusiva para /metrics e /healthz

	// Warnings lista valores inválidos substituídos pelo default
	Warnings []string
}

// Load carrega variáveis de ambiente e define defaults para cada serviço
// Resolve portas conforme o SERVICE_NAME
func Load() Config {
	svc := getEnv("SERVICE_NAME", "odds-gateway")
	env := getEnv("ENV", "local")

	cfg := Config{
		Env:         env,
		ServiceName: svc,

		OddsAPIBaseURL:    getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
		OddsAPIKey:        getEnv("ODDS_API_KEY", ""),
		OddsAPIKeyMode:    getEnv("ODDS_API_KEY_MODE", KeyModeQuery),
		OddsAPIKeyHeader:  getEnv("ODDS_API_KEY_HEADER", "x-rapidapi-key"),
		OddsAPIRegions:    getEnv("ODDS_API_REGIONS", "us"),
		OddsAPIMarkets:    getEnv("ODDS_API_MARKETS", "h2h,spreads,totals"),
		OddsAPIOddsFormat: getEnv("ODDS_API_ODDS_FORMAT", "american"),
		OddsAPIDateFormat: getEnv("ODDS_API_DATE_FORMAT", "iso"),
		DefaultSport:      getEnv("ODDS_SPORT_KEY", "basketball_nba"),

		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		TopicOddsSnapshots: getEnv("KAFKA_TOPIC_ODDS_SNAPSHOTS", ctopics.OddsSnapshots),
		RedisPubSubChannel: getEnv("REDIS_PUBSUB_CHANNEL", ctopics.OddsSnapshotsBroadcast),
	}

	cfg.OddsAPITimeout = time.Duration(cfg.intEnv("ODDS_API_TIMEOUT_SECONDS", 5)) * time.Second
	cfg.FreshTTL = time.Duration(cfg.intEnv("ODDS_FRESH_TTL_SECONDS", 20)) * time.Second
	cfg.StaleTTL = EffectiveStaleTTL(cfg.FreshTTL, time.Duration(cfg.intEnv("ODDS_STALE_TTL_SECONDS", 300))*time.Second)
	cfg.SyntheticOnFailure = cfg.boolEnv("ODDS_SYNTHETIC_ON_FAILURE", false)
	cfg.SupplierFailRate = cfg.floatEnv("SUPPLIER_FAIL_RATE", 0)

	if cfg.OddsAPIKeyMode != KeyModeQuery && cfg.OddsAPIKeyMode != KeyModeHeader {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ODDS_API_KEY_MODE=%q invalid, using %q", cfg.OddsAPIKeyMode, KeyModeQuery))
		cfg.OddsAPIKeyMode = KeyModeQuery
	}

	// Define portas padrão para cada serviço
	switch svc {
	case "supplier-simulator":
		cfg.HTTPPort = getEnv("HTTP_PORT_SUPPLIER", "8081")
		cfg.MetricsPort = getEnv("METRICS_PORT_SUPPLIER", "9094")
	default:
		cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9095")
	}

	return cfg
}

// EffectiveStaleTTL garante que a janela de dados antigos nunca seja menor que a fresca nem que 10s
func EffectiveStaleTTL(fresh, stale time.Duration) time.Duration {
	return max(stale, fresh, minStaleTTL)
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (c *Config) intEnv(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q invalid, using %d", key, v, def))
		return def
	}
	return n
}

func (c *Config) boolEnv(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q invalid, using %t", key, v, def))
		return def
	}
	return b
}

func (c *Config) floatEnv(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q invalid, using %g", key, v, def))
		return def
	}
	return f
}
