package writeback

import (
	"sync"
	"time"

	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Coalescer agrupa escritas duráveis por chave: agendar de novo a mesma
// chave dentro da janela cancela a escrita pendente e reagenda com o payload
// mais recente. Garante no máximo uma escrita durável por chave por janela.
type Coalescer struct {
	mu        sync.Mutex
	pendentes map[string]*pendente
	delay     time.Duration
	log       *logger.Logger
}

type pendente struct {
	timer  *time.Timer
	gravar func() error
}

// New cria o coalescer com a janela padrão de debounce.
func New(delay time.Duration, log *logger.Logger) *Coalescer {
	if delay <= 0 {
		delay = 120 * time.Millisecond
	}
	return &Coalescer{
		pendentes: make(map[string]*pendente),
		delay:     delay,
		log:       log,
	}
}

// Agendar registra uma escrita para a chave. Uma escrita pendente para a
// mesma chave é cancelada e substituída. delay <= 0 usa a janela padrão.
func (c *Coalescer) Agendar(chave string, gravar func() error, delay time.Duration) {
	if delay <= 0 {
		delay = c.delay
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pendentes[chave]; ok {
		p.timer.Stop()
	}
	p := &pendente{gravar: gravar}
	p.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		// A entrada pode já ter sido substituída ou descarregada por FlushAll.
		if atual, ok := c.pendentes[chave]; !ok || atual != p {
			c.mu.Unlock()
			return
		}
		delete(c.pendentes, chave)
		c.mu.Unlock()
		c.executar(chave, p.gravar)
	})
	c.pendentes[chave] = p
}

// Cancelar descarta a escrita pendente da chave, se houver.
func (c *Coalescer) Cancelar(chave string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pendentes[chave]; ok {
		p.timer.Stop()
		delete(c.pendentes, chave)
	}
}

// FlushAll executa sincronamente todas as escritas pendentes. Chamado no
// desligamento para não perder a última janela.
func (c *Coalescer) FlushAll() {
	c.mu.Lock()
	restantes := make(map[string]*pendente, len(c.pendentes))
	for chave, p := range c.pendentes {
		p.timer.Stop()
		restantes[chave] = p
	}
	c.pendentes = make(map[string]*pendente)
	c.mu.Unlock()

	for chave, p := range restantes {
		c.executar(chave, p.gravar)
	}
}

// Pendente informa se a chave tem escrita agendada ainda não descarregada.
func (c *Coalescer) Pendente(chave string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pendentes[chave]
	return ok
}

// Pendentes devolve quantas chaves aguardam escrita.
func (c *Coalescer) Pendentes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pendentes)
}

func (c *Coalescer) executar(chave string, gravar func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("chave", chave).Interface("panic", r).Msg("pânico em escrita agendada")
		}
	}()
	if err := gravar(); err != nil {
		// Falha de persistência: o estado em memória segue correto e pode
		// divergir do durável até a próxima escrita bem sucedida.
		c.log.Error().Err(err).Str("chave", chave).Msg("falha em escrita agendada")
	}
}
