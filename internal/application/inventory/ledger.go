package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Ledger é o razão append-only de movimentos de estoque. Aceita entradas até
// de produtos já excluídos: o histórico não pode ser reescrito. Em disco a
// ordem é do mais antigo ao mais novo; consultas devolvem do mais novo ao
// mais antigo. Cada append reescreve o array inteiro (sem diff), coalescido
// pela janela de write-back.
type Ledger struct {
	mu         sync.Mutex
	movimentos []entity.Movimento

	store  localstore.Store
	wb     *writeback.Coalescer
	remoto remote.Mirror
	bus    *events.Bus
	log    *logger.Logger
	agora  func() time.Time
}

// NewLedger hidrata o razão a partir do store.
func NewLedger(store localstore.Store, wb *writeback.Coalescer, remoto remote.Mirror, bus *events.Bus, log *logger.Logger) *Ledger {
	l := &Ledger{store: store, wb: wb, remoto: remoto, bus: bus, log: log, agora: time.Now}
	l.Recarregar()
	return l
}

// Recarregar relê o razão do store. Também usado quando outra aba sinaliza
// mudança (a aba irmã re-puxa, não re-mescla).
func (l *Ledger) Recarregar() {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, ok, err := l.store.Get(localstore.ChaveMovimentos)
	if err != nil {
		l.log.Error().Err(err).Msg("carregar movimentos")
	}
	if !ok {
		l.movimentos = nil
		return
	}
	var movs []entity.Movimento
	if err := json.Unmarshal([]byte(raw), &movs); err != nil {
		l.log.Error().Err(err).Msg("decodificar movimentos persistidos")
		return
	}
	l.movimentos = movs
}

// Registrar acrescenta um movimento ao razão. Nunca rejeita por produto
// inexistente. Gera id (UUID) e data quando ausentes. Dispara a escrita
// coalescida, o documento remoto, o incremento atômico de estoque remoto e
// a notificação de mudança do razão.
func (l *Ledger) Registrar(mov entity.Movimento) entity.Movimento {
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	if mov.Data.IsZero() {
		mov.Data = l.agora()
	}

	l.mu.Lock()
	l.movimentos = append(l.movimentos, mov)
	l.salvarLocked()
	l.mu.Unlock()

	go func() {
		ctx := context.Background()
		l.remoto.AddMovimento(ctx, mov)
		if delta := mov.Delta(); delta != 0 && mov.ProdutoID != "" {
			l.remoto.AjustarEstoque(ctx, mov.ProdutoID, delta)
		}
	}()

	l.bus.Publicar(events.Evento{Nome: events.LedgerAlterado, Canal: events.CanalLocal})
	return mov
}

// Consultar devolve os movimentos do mais novo ao mais antigo, opcionalmente
// só a partir de um instante.
func (l *Ledger) Consultar(desde *time.Time) []entity.Movimento {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.Movimento, 0, len(l.movimentos))
	for i := len(l.movimentos) - 1; i >= 0; i-- {
		m := l.movimentos[i]
		if desde != nil && m.Data.Before(*desde) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// UltimosDias devolve os movimentos dos últimos n dias, do mais novo ao mais
// antigo.
func (l *Ledger) UltimosDias(n int) []entity.Movimento {
	desde := l.agora().AddDate(0, 0, -n)
	return l.Consultar(&desde)
}

// SaidasUltimos30Dias soma as quantidades de saída dos últimos 30 dias
// (numerador do giro de estoque). Varredura linear: aceitável no volume que
// este sistema atende.
func (l *Ledger) SaidasUltimos30Dias() int {
	limite := l.agora().AddDate(0, 0, -30)
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, m := range l.movimentos {
		if m.Tipo == entity.TipoSaida && !m.Data.Before(limite) {
			total += m.Quantidade
		}
	}
	return total
}

// Tamanho devolve o comprimento do razão (monotônico não decrescente).
func (l *Ledger) Tamanho() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.movimentos)
}

// HashDeriva devolve um resumo barato do razão (comprimento + id e instante
// da última entrada), usado pelo poll de deriva entre abas.
func (l *Ledger) HashDeriva() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return resumoDeriva(l.movimentos)
}

// HashPersistido calcula o mesmo resumo sobre o valor durável do store, sem
// tocar o estado em memória. Devolve vazio quando o valor não pôde ser lido.
func (l *Ledger) HashPersistido() string {
	raw, ok, err := l.store.Get(localstore.ChaveMovimentos)
	if err != nil {
		l.log.Error().Err(err).Msg("ler movimentos persistidos")
		return ""
	}
	if !ok {
		return "0"
	}
	var movs []entity.Movimento
	if err := json.Unmarshal([]byte(raw), &movs); err != nil {
		l.log.Error().Err(err).Msg("decodificar movimentos persistidos")
		return ""
	}
	return resumoDeriva(movs)
}

func resumoDeriva(movs []entity.Movimento) string {
	if len(movs) == 0 {
		return "0"
	}
	ultimo := movs[len(movs)-1]
	return fmt.Sprintf("%d|%s|%d", len(movs), ultimo.ID, ultimo.Data.UnixMilli())
}

// SubstituirTudo troca o razão pelo snapshot remoto (o pull devolve do mais
// novo ao mais antigo; em memória fica do mais antigo ao mais novo).
func (l *Ledger) SubstituirTudo(movs []entity.Movimento, canal string) {
	invertido := make([]entity.Movimento, len(movs))
	for i, m := range movs {
		invertido[len(movs)-1-i] = m
	}

	l.mu.Lock()
	l.movimentos = invertido
	l.salvarLocked()
	l.mu.Unlock()

	l.bus.Publicar(events.Evento{Nome: events.LedgerAlterado, Canal: canal})
}

// salvarLocked agenda a reescrita coalescida do array inteiro. Chamar com
// l.mu segurado.
func (l *Ledger) salvarLocked() {
	dados, err := json.Marshal(l.movimentos)
	if err != nil {
		l.log.Error().Err(err).Msg("serializar movimentos")
		return
	}
	payload := string(dados)
	l.wb.Agendar(localstore.ChaveMovimentos, func() error {
		return l.store.Set(localstore.ChaveMovimentos, payload)
	}, 0)
}
