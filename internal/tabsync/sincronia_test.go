package tabsync_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/internal/tabsync"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// instancia é uma pilha completa de caixa, como uma aba do navegador.
type instancia struct {
	catalogo    *catalog.Catalogo
	ledger      *inventory.Ledger
	coordenador *checkout.Coordenador
	bus         *events.Bus
	wb          *writeback.Coalescer
	sincronia   *tabsync.Sincronia
}

// novaInstancia monta uma pilha sobre o store observado compartilhado. As
// instâncias irmãs compartilham o mesmo Observado: a notificação de escrita
// chega a todas, como o evento de mudança de armazenamento entre abas.
func novaInstancia(t *testing.T, observado *localstore.Observado, hub *tabsync.Hub, op tabsync.Opcoes) *instancia {
	return novaInstanciaComJanela(t, observado, hub, op, 2*time.Millisecond)
}

func novaInstanciaComJanela(t *testing.T, observado *localstore.Observado, hub *tabsync.Hub, op tabsync.Opcoes, janela time.Duration) *instancia {
	t.Helper()
	log := logger.Nop()
	wb := writeback.New(janela, log)
	bus := events.New()

	cat := catalog.New(observado, wb, remote.Desativado{}, bus, log)
	led := inventory.NewLedger(observado, wb, remote.Desativado{}, bus, log)
	ven := vendors.New(observado, log)
	coord := checkout.New(cat, led, ven, observado, wb, remote.Desativado{}, bus, log)

	s := tabsync.New(hub, cat, led, coord, wb, observado, bus, log, op)
	t.Cleanup(s.Fechar)
	return &instancia{catalogo: cat, ledger: led, coordenador: coord, bus: bus, wb: wb, sincronia: s}
}

func TestHub_RemetenteNaoRecebeOProprioAnuncio(t *testing.T) {
	hub := tabsync.NewHub()

	var deA, deB []string
	idA, sairA := hub.Entrar(func(a tabsync.Anuncio) { deA = append(deA, a.Nome) })
	defer sairA()
	idB, sairB := hub.Entrar(func(a tabsync.Anuncio) { deB = append(deB, a.Nome) })
	defer sairB()

	hub.Difundir(idA, tabsync.Anuncio{Nome: events.LedgerAlterado})
	assert.Empty(t, deA, "remetente não recebe o próprio anúncio")
	assert.Equal(t, []string{events.LedgerAlterado}, deB)

	hub.Difundir(idB, tabsync.Anuncio{Nome: events.CatalogoAlterado})
	assert.Equal(t, []string{events.CatalogoAlterado}, deA)
}

func TestHub_SairParaDeReceber(t *testing.T) {
	hub := tabsync.NewHub()

	recebidos := 0
	_, sair := hub.Entrar(func(tabsync.Anuncio) { recebidos++ })
	idB, sairB := hub.Entrar(func(tabsync.Anuncio) {})
	defer sairB()

	hub.Difundir(idB, tabsync.Anuncio{Nome: events.LedgerAlterado})
	sair()
	hub.Difundir(idB, tabsync.Anuncio{Nome: events.LedgerAlterado})

	assert.Equal(t, 1, recebidos)
}

// Duas instâncias sobre o mesmo store convergem: a mutação numa delas chega
// à outra via difusão e via notificação do store, sem poll.
func TestSincronia_ConvergenciaPorDifusaoEStore(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())
	hub := tabsync.NewHub()
	op := tabsync.Opcoes{Broadcast: true, Store: true, Poll: false}

	a := novaInstancia(t, observado, hub, op)
	b := novaInstancia(t, observado, hub, op)

	produto := a.catalogo.Upsert(entity.Produto{
		Nome:    "Carvão para Narguilé",
		Preco:   decimal.RequireFromString("15.00"),
		Estoque: 12,
	})

	require.Eventually(t, func() bool {
		_, err := b.catalogo.BuscarPorID(produto.ID)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond, "a instância irmã deve enxergar o produto novo")

	achado, err := b.catalogo.BuscarPorID(produto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carvão para Narguilé", achado.Nome)
}

// Com difusão e store desligados, o poll de deriva sozinho ainda converge o
// razão entre as instâncias.
func TestSincronia_PollDeDerivaSozinho(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())

	opA := tabsync.Opcoes{Broadcast: false, Store: false, Poll: false}
	a := novaInstancia(t, observado, nil, opA)

	opB := tabsync.Opcoes{Broadcast: false, Store: false, Poll: true, PollPeriodo: 5 * time.Millisecond}
	b := novaInstancia(t, observado, nil, opB)

	var mu sync.Mutex
	var canais []string
	b.bus.Assinar(func(ev events.Evento) {
		if ev.Nome == events.LedgerAlterado {
			mu.Lock()
			canais = append(canais, ev.Canal)
			mu.Unlock()
		}
	})

	a.ledger.Registrar(entity.Movimento{Tipo: entity.TipoEntrada, ProdutoID: "1", Quantidade: 3})
	a.wb.FlushAll()

	require.Eventually(t, func() bool {
		return b.ledger.Tamanho() == 1
	}, 2*time.Second, 5*time.Millisecond, "o poll deve detectar a deriva e re-puxar")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(canais) > 0
	}, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, events.CanalPoll, canais[0], "a deriva é anunciada no canal de poll")
	mu.Unlock()
}

// Dentro da janela de write-back o store fica atrás da memória. O poll não
// pode reverter a entrada pendente nem o registro seguinte pode perdê-la no
// payload descarregado.
func TestSincronia_PollNaoReverteEscritaPendente(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())
	op := tabsync.Opcoes{Broadcast: false, Store: false, Poll: true, PollPeriodo: 5 * time.Millisecond}
	a := novaInstanciaComJanela(t, observado, nil, op, 250*time.Millisecond)

	movA := a.ledger.Registrar(entity.Movimento{Tipo: entity.TipoEntrada, ProdutoID: "1", Quantidade: 3})

	// Vários ticks de poll passam dentro da janela de debounce.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, a.ledger.Tamanho(), "o poll não apaga a entrada pendente")

	movB := a.ledger.Registrar(entity.Movimento{Tipo: entity.TipoSaida, ProdutoID: "1", Quantidade: 1})
	a.wb.FlushAll()

	// O durável contém as duas entradas.
	outro := inventory.NewLedger(observado, writeback.New(time.Millisecond, logger.Nop()), remote.Desativado{}, events.New(), logger.Nop())
	movs := outro.Consultar(nil)
	require.Len(t, movs, 2)
	assert.Equal(t, movB.ID, movs[0].ID)
	assert.Equal(t, movA.ID, movs[1].ID)
}

// A notificação de mudança do store disparada pelo flush de uma irmã não
// reverte a escrita ainda pendente da instância que a recebe.
func TestSincronia_NotificacaoDeStoreNaoReverteEscritaPendente(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())
	op := tabsync.Opcoes{Broadcast: false, Store: true, Poll: false}
	a := novaInstanciaComJanela(t, observado, nil, op, 250*time.Millisecond)
	b := novaInstanciaComJanela(t, observado, nil, op, time.Millisecond)

	movA := a.ledger.Registrar(entity.Movimento{Tipo: entity.TipoEntrada, ProdutoID: "1", Quantidade: 3})

	b.ledger.Registrar(entity.Movimento{Tipo: entity.TipoSaida, ProdutoID: "2", Quantidade: 1})
	b.wb.FlushAll()
	time.Sleep(20 * time.Millisecond)

	movs := a.ledger.Consultar(nil)
	require.Len(t, movs, 1, "a entrada pendente sobrevive à notificação da irmã")
	assert.Equal(t, movA.ID, movs[0].ID)
}

// Sem nenhum mecanismo de sincronia ligado, duas instâncias que vendem o
// mesmo produto perdem uma das baixas: a última escrita no store vence.
// Esta é a corrida conhecida entre abas; o comportamento fica documentado
// aqui de propósito.
func TestSincronia_CorridaEntreInstanciasPerdeBaixa(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())
	op := tabsync.Opcoes{Broadcast: false, Store: false, Poll: false}

	a := novaInstancia(t, observado, nil, op)
	b := novaInstancia(t, observado, nil, op)

	_, err := a.coordenador.FinalizarVenda(checkout.Fechamento{
		Itens:          []checkout.ItemCarrinho{{ProdutoID: "1", Quantidade: 2}},
		FormaPagamento: entity.PagamentoPix,
	})
	require.NoError(t, err)

	// b ainda enxerga estoque 50 e vende por cima.
	_, err = b.coordenador.FinalizarVenda(checkout.Fechamento{
		Itens:          []checkout.ItemCarrinho{{ProdutoID: "1", Quantidade: 3}},
		FormaPagamento: entity.PagamentoPix,
	})
	require.NoError(t, err)

	a.wb.FlushAll()
	b.wb.FlushAll()

	// Uma instância nova hidratada do store vê só a baixa de b (50-3),
	// não as duas (50-2-3).
	c := novaInstancia(t, observado, nil, op)
	produto, err := c.catalogo.BuscarPorID("1")
	require.NoError(t, err)
	assert.Equal(t, 47, produto.Estoque, "a baixa da instância a foi perdida")
}

// O fechamento de venda numa instância propaga histórico e receita para a
// irmã.
func TestSincronia_VendaPropagada(t *testing.T) {
	observado := localstore.Observar(localstore.NewMemory())
	hub := tabsync.NewHub()
	op := tabsync.Opcoes{Broadcast: true, Store: true, Poll: false}

	a := novaInstancia(t, observado, hub, op)
	b := novaInstancia(t, observado, hub, op)

	_, err := a.coordenador.FinalizarVenda(checkout.Fechamento{
		Itens:          []checkout.ItemCarrinho{{ProdutoID: "1", Quantidade: 2}},
		FormaPagamento: entity.PagamentoPix,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(b.coordenador.Vendas(nil, nil, "")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return b.ledger.Tamanho() == 1
	}, 2*time.Second, 5*time.Millisecond)
}
