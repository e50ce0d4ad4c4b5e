// Package espelho mantém o estado local convergente com o espelho remoto
// por pulls periódicos de snapshot. A aplicação é substituição integral,
// last-writer-wins no nível de coleção; o merge fino acontece do lado da
// escrita (upserts e incrementos atômicos).
package espelho

import (
	"context"
	"sync"
	"time"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Sincronizador roda o laço de pull do espelho remoto.
type Sincronizador struct {
	remoto      remote.Mirror
	catalogo    *catalog.Catalogo
	ledger      *inventory.Ledger
	coordenador *checkout.Coordenador
	log         *logger.Logger

	intervalo time.Duration
	parar     chan struct{}
	pararUma  sync.Once
}

// New constrói o sincronizador; não inicia o laço.
func New(remoto remote.Mirror, catalogo *catalog.Catalogo, ledger *inventory.Ledger, coordenador *checkout.Coordenador, intervalo time.Duration, log *logger.Logger) *Sincronizador {
	return &Sincronizador{
		remoto:      remoto,
		catalogo:    catalogo,
		ledger:      ledger,
		coordenador: coordenador,
		log:         log,
		intervalo:   intervalo,
		parar:       make(chan struct{}),
	}
}

// Iniciar faz um pull imediato e entra no laço periódico. No-op quando o
// espelho está desativado.
func (s *Sincronizador) Iniciar(ctx context.Context) {
	if !s.remoto.Habilitado() {
		return
	}
	go func() {
		s.PuxarAgora(ctx)
		tick := time.NewTicker(s.intervalo)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.parar:
				return
			case <-tick.C:
				s.PuxarAgora(ctx)
			}
		}
	}()
}

// Parar encerra o laço.
func (s *Sincronizador) Parar() {
	s.pararUma.Do(func() { close(s.parar) })
}

// PuxarAgora executa um ciclo de pull e aplica o snapshot. Falha de rede é
// registrada e o ciclo seguinte tenta de novo.
func (s *Sincronizador) PuxarAgora(ctx context.Context) {
	snap, err := s.remoto.Puxar(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("pull do espelho remoto falhou")
		return
	}
	if snap == nil {
		return
	}
	s.catalogo.SubstituirTudo(snap.Produtos, events.CanalRemoto)
	s.ledger.SubstituirTudo(snap.Movimentos, events.CanalRemoto)
	s.coordenador.SubstituirVendas(snap.Vendas, events.CanalRemoto)
	s.log.Debug().
		Int("produtos", len(snap.Produtos)).
		Int("movimentos", len(snap.Movimentos)).
		Int("vendas", len(snap.Vendas)).
		Msg("snapshot remoto aplicado")
}
