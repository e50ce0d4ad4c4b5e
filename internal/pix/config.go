package pix

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Config são os dados do recebedor usados em toda cobrança.
type Config struct {
	Chave  string `json:"chave"`
	Nome   string `json:"nome"`
	Cidade string `json:"cidade"`
	Info   string `json:"info,omitempty"`
	Banco  string `json:"banco,omitempty"`
}

// Servico guarda a configuração do recebedor e monta cobranças com ela.
type Servico struct {
	mu     sync.Mutex
	config Config

	store localstore.Store
	log   *logger.Logger
}

// NewServico hidrata a configuração do store; na ausência usa os padrões
// vindos do ambiente.
func NewServico(store localstore.Store, padrao Config, log *logger.Logger) *Servico {
	s := &Servico{store: store, config: NormalizarConfig(padrao), log: log}
	raw, ok, err := store.Get(localstore.ChavePixConfig)
	if err != nil {
		log.Error().Err(err).Msg("carregar configuração pix")
		return s
	}
	if ok {
		var c Config
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			log.Error().Err(err).Msg("decodificar configuração pix")
		} else {
			s.config = NormalizarConfig(c)
		}
	}
	return s
}

// Config devolve a configuração corrente.
func (s *Servico) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Salvar normaliza e persiste a configuração.
func (s *Servico) Salvar(c Config) Config {
	c = NormalizarConfig(c)
	s.mu.Lock()
	s.config = c
	s.mu.Unlock()

	dados, err := json.Marshal(c)
	if err != nil {
		s.log.Error().Err(err).Msg("serializar configuração pix")
		return c
	}
	if err := s.store.Set(localstore.ChavePixConfig, string(dados)); err != nil {
		s.log.Error().Err(err).Msg("salvar configuração pix")
	}
	return c
}

// Cobrar monta uma cobrança com a configuração corrente.
func (s *Servico) Cobrar(c Cobranca) (string, error) {
	cfg := s.Config()
	if c.Chave == "" {
		c.Chave = cfg.Chave
	}
	if c.Nome == "" {
		c.Nome = cfg.Nome
	}
	if c.Cidade == "" {
		c.Cidade = cfg.Cidade
	}
	if c.Info == "" {
		c.Info = cfg.Info
	}
	return Payload(c)
}

// NormalizarConfig aplica as regras de saneamento da chave e os limites EMV.
// Chaves sem "@" (telefone, CPF, CNPJ) perdem tudo que não é dígito; e-mail e
// chave aleatória passam intactos.
func NormalizarConfig(c Config) Config {
	c.Chave = NormalizarChave(c.Chave)
	c.Nome = truncar(strings.TrimSpace(c.Nome), MaxNome)
	c.Cidade = truncar(strings.TrimSpace(c.Cidade), MaxCidade)
	c.Info = strings.TrimSpace(c.Info)
	c.Banco = strings.TrimSpace(c.Banco)
	return c
}

// NormalizarChave saneia uma chave pix digitada à mão.
func NormalizarChave(chave string) string {
	chave = strings.TrimSpace(chave)
	if chave == "" || strings.Contains(chave, "@") {
		return chave
	}
	if strings.ContainsAny(chave, "0123456789") && !pareceAleatoria(chave) {
		var b strings.Builder
		for _, r := range chave {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return chave
}

// pareceAleatoria detecta chaves aleatórias (EVP): UUID com hífens e letras.
func pareceAleatoria(chave string) bool {
	if len(chave) != 36 {
		return false
	}
	for _, r := range chave {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
		default:
			return false
		}
	}
	return true
}
