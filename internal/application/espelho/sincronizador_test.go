package espelho_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/espelho"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// espelhoFixo devolve sempre o mesmo snapshot, como um servidor remoto
// parado no tempo.
type espelhoFixo struct {
	remote.Desativado
	snap *remote.Snapshot
	err  error
}

func (e *espelhoFixo) Habilitado() bool { return true }

func (e *espelhoFixo) Puxar(context.Context) (*remote.Snapshot, error) {
	return e.snap, e.err
}

type pilha struct {
	catalogo    *catalog.Catalogo
	ledger      *inventory.Ledger
	coordenador *checkout.Coordenador
	bus         *events.Bus
}

func novaPilha(t *testing.T) *pilha {
	t.Helper()
	store := localstore.NewMemory()
	wb := writeback.New(5*time.Millisecond, logger.Nop())
	bus := events.New()
	log := logger.Nop()

	cat := catalog.New(store, wb, remote.Desativado{}, bus, log)
	led := inventory.NewLedger(store, wb, remote.Desativado{}, bus, log)
	ven := vendors.New(store, log)
	coord := checkout.New(cat, led, ven, store, wb, remote.Desativado{}, bus, log)
	return &pilha{catalogo: cat, ledger: led, coordenador: coord, bus: bus}
}

// Um ciclo de pull substitui catálogo, razão e vendas pelo snapshot e
// anuncia tudo no canal remoto.
func TestPuxarAgora_AplicaSnapshot(t *testing.T) {
	p := novaPilha(t)

	base := time.Date(2026, 8, 27, 15, 0, 0, 0, time.Local)
	fixo := &espelhoFixo{snap: &remote.Snapshot{
		Produtos: []entity.Produto{
			{ID: "r1", Nome: "Remoto", Preco: decimal.RequireFromString("9.90"), Estoque: 7},
		},
		Movimentos: []entity.Movimento{
			{ID: "m-novo", Data: base.Add(time.Hour), Tipo: entity.TipoSaida, ProdutoID: "r1", Quantidade: 1},
			{ID: "m-velho", Data: base, Tipo: entity.TipoEntrada, ProdutoID: "r1", Quantidade: 8},
		},
		Vendas: []entity.Venda{
			{ID: "v1", Data: base, TotalVenda: decimal.RequireFromString("9.90"), FormaPagamento: entity.PagamentoPix},
		},
	}}

	var canais []string
	p.bus.Assinar(func(ev events.Evento) { canais = append(canais, ev.Canal) })

	s := espelho.New(fixo, p.catalogo, p.ledger, p.coordenador, time.Minute, logger.Nop())
	s.PuxarAgora(context.Background())

	produto, err := p.catalogo.BuscarPorID("r1")
	require.NoError(t, err)
	assert.Equal(t, 7, produto.Estoque)
	assert.Len(t, p.catalogo.Listar(), 1, "o snapshot substitui o catálogo inteiro")

	movs := p.ledger.Consultar(nil)
	require.Len(t, movs, 2)
	assert.Equal(t, "m-novo", movs[0].ID, "consulta segue do mais novo ao mais antigo")

	assert.Len(t, p.coordenador.Vendas(nil, nil, ""), 1)

	require.NotEmpty(t, canais)
	for _, canal := range canais {
		assert.Equal(t, events.CanalRemoto, canal, "aplicação de snapshot nunca se anuncia como mutação local")
	}
}

func TestPuxarAgora_FalhaNaoDerrubaEstadoLocal(t *testing.T) {
	p := novaPilha(t)
	antes := len(p.catalogo.Listar())

	fixo := &espelhoFixo{err: context.DeadlineExceeded}
	s := espelho.New(fixo, p.catalogo, p.ledger, p.coordenador, time.Minute, logger.Nop())
	s.PuxarAgora(context.Background())

	assert.Len(t, p.catalogo.Listar(), antes, "falha de pull preserva o estado local")
}

func TestPuxarAgora_SnapshotNuloIgnorado(t *testing.T) {
	p := novaPilha(t)
	antes := len(p.catalogo.Listar())

	s := espelho.New(&espelhoFixo{}, p.catalogo, p.ledger, p.coordenador, time.Minute, logger.Nop())
	s.PuxarAgora(context.Background())

	assert.Len(t, p.catalogo.Listar(), antes)
}

// Com o espelho desativado, Iniciar é no-op.
func TestIniciar_NoOpSemEspelho(t *testing.T) {
	p := novaPilha(t)
	s := espelho.New(remote.Desativado{}, p.catalogo, p.ledger, p.coordenador, time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Iniciar(ctx)
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, p.catalogo.Listar(), 6, "catálogo de demonstração intacto")
	s.Parar()
}
