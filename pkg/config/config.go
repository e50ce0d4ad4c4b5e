package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa a configuração da aplicação (leitura via Viper de env e opcionalmente arquivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	Sync      SyncConfig
	Writeback WritebackConfig
	Pix       PixConfig
}

// AppConfig configuração geral da aplicação.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuração do servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devolve o endereço de escuta (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig configuração do armazenamento local (SQLite).
// Path aceita um arquivo ou ":memory:" para execução efêmera.
type StoreConfig struct {
	Path string
}

// SyncConfig configuração do espelho remoto e dos canais de consistência.
// DatabaseURL vazio desativa o espelho: o sistema opera só com o store local.
type SyncConfig struct {
	DatabaseURL  string
	PullInterval time.Duration // intervalo de pull de snapshots remotos
	DriftPoll    time.Duration // poll de detecção de deriva entre abas
}

// WritebackConfig janela de coalescência das escritas duráveis.
type WritebackConfig struct {
	Delay time.Duration
}

// PixConfig valores padrão do recebedor PIX (podem ser alterados em runtime
// e ficam persistidos na chave pix_config do store).
type PixConfig struct {
	Chave  string
	Nome   string
	Cidade string
	Info   string
	Banco  string
}

// Load lê a configuração de variáveis de ambiente (e opcionalmente de arquivo).
// As env vars têm prioridade. Nomes esperados: APP_ENV, HTTP_PORT, STORE_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: arquivo de configuração (.env ou config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos erro se não existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos erro se não existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "tabacaria-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Path: getString(v, "STORE_PATH", "tabacaria.db"),
		},
		Sync: SyncConfig{
			DatabaseURL:  getString(v, "REMOTE_DATABASE_URL", ""),
			PullInterval: time.Duration(getInt(v, "SYNC_PULL_SECONDS", 15)) * time.Second,
			DriftPoll:    time.Duration(getInt(v, "DRIFT_POLL_SECONDS", 2)) * time.Second,
		},
		Writeback: WritebackConfig{
			Delay: time.Duration(getInt(v, "WRITEBACK_DELAY_MS", 120)) * time.Millisecond,
		},
		Pix: PixConfig{
			Chave:  getString(v, "PIX_CHAVE", "email@exemplo.com"),
			Nome:   getString(v, "PIX_NOME", "Seu Nome"),
			Cidade: getString(v, "PIX_CIDADE", "SUA CIDADE"),
			Info:   getString(v, "PIX_INFO", "Pagamento de produtos"),
			Banco:  getString(v, "PIX_BANCO", "Seu Banco"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
