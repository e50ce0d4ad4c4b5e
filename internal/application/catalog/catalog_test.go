package catalog_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

func novoCatalogo(t *testing.T) (*catalog.Catalogo, localstore.Store, *writeback.Coalescer) {
	t.Helper()
	store := localstore.NewMemory()
	wb := writeback.New(5*time.Millisecond, logger.Nop())
	c := catalog.New(store, wb, remote.Desativado{}, events.New(), logger.Nop())
	return c, store, wb
}

func TestNew_SemeiaDemonstracaoQuandoVazio(t *testing.T) {
	c, _, _ := novoCatalogo(t)
	produtos := c.Listar()
	require.Len(t, produtos, 6, "store vazio recebe o catálogo de demonstração")
	assert.Equal(t, "Coca-Cola 350ml", produtos[0].Nome)
}

func TestNew_NaoSemeiaQuandoChaveExiste(t *testing.T) {
	store := localstore.NewMemory()
	require.NoError(t, store.Set(localstore.ChaveProdutos, "[]"))
	c := catalog.New(store, writeback.New(5*time.Millisecond, logger.Nop()), remote.Desativado{}, events.New(), logger.Nop())
	assert.Empty(t, c.Listar(), "lista vazia persistida não é re-semeada")
}

func TestUpsert_GeraIDEPersiste(t *testing.T) {
	c, store, wb := novoCatalogo(t)

	p := c.Upsert(entity.Produto{Nome: "Sedas", Preco: decimal.RequireFromString("7.00"), Estoque: 10})
	assert.NotEmpty(t, p.ID, "id gerado quando ausente")

	achado, err := c.BuscarPorID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sedas", achado.Nome)

	wb.FlushAll()
	_, ok, err := store.Get(localstore.ChaveProdutos)
	require.NoError(t, err)
	assert.True(t, ok, "catálogo persistido após o flush")
}

func TestUpsert_SubstituiPorID(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	p := c.Upsert(entity.Produto{Nome: "Filtro", Preco: decimal.RequireFromString("3.00")})
	p.Nome = "Filtro Slim"
	c.Upsert(p)

	achado, err := c.BuscarPorID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Filtro Slim", achado.Nome)
	assert.Len(t, c.Listar(), 7, "upsert do mesmo id não duplica")
}

func TestRemover(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	require.NoError(t, c.Remover("1"))
	_, err := c.BuscarPorID("1")
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado)

	assert.ErrorIs(t, c.Remover("nao-existe"), domain.ErrNaoEncontrado)
}

func TestAlterarEstoque_ClampReduzAoDisponivel(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	// Produto 2 começa com 30 unidades.
	antes, depois, aplicado, err := c.AlterarEstoque("2", -35, true)
	require.NoError(t, err)
	assert.Equal(t, 30, antes)
	assert.Equal(t, 0, depois, "estoque nunca fica negativo")
	assert.Equal(t, -30, aplicado, "baixa reduzida ao disponível")
}

func TestAlterarEstoque_SemClampRejeita(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	antes, depois, aplicado, err := c.AlterarEstoque("2", -35, false)
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)
	assert.Equal(t, 30, antes)
	assert.Equal(t, 30, depois, "rejeição não muta o estoque")
	assert.Zero(t, aplicado)

	p, _ := c.BuscarPorID("2")
	assert.Equal(t, 30, p.Estoque)
}

func TestBuscar_SemAcentosESemCaixa(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	// "Água Mineral 500ml" deve ser achada sem acento.
	resultados := c.Buscar("agua")
	require.Len(t, resultados, 1)
	assert.Equal(t, "Água Mineral 500ml", resultados[0].Nome)

	resultados = c.Buscar("MARLBORO")
	require.Len(t, resultados, 1)
	assert.Equal(t, "Cigarro Marlboro", resultados[0].Nome)

	assert.Len(t, c.Buscar("bebidas"), 2, "busca também cobre categoria")
	assert.Empty(t, c.Buscar("nao-existe"))
}

func TestSubstituirTudo_InvalidaIndice(t *testing.T) {
	c, _, _ := novoCatalogo(t)

	// Aquece o índice.
	_, err := c.BuscarPorID("1")
	require.NoError(t, err)

	c.SubstituirTudo([]entity.Produto{
		{ID: "99", Nome: "Novo", Preco: decimal.RequireFromString("1.00"), Estoque: 5},
	}, events.CanalRemoto)

	_, err = c.BuscarPorID("1")
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado, "catálogo antigo não sobrevive ao replace")

	p, err := c.BuscarPorID("99")
	require.NoError(t, err)
	assert.Equal(t, "outros", p.Categoria, "categoria vazia normalizada no replace")
}

func TestValorEUnidadesEmEstoque(t *testing.T) {
	store := localstore.NewMemory()
	require.NoError(t, store.Set(localstore.ChaveProdutos, "[]"))
	c := catalog.New(store, writeback.New(5*time.Millisecond, logger.Nop()), remote.Desativado{}, events.New(), logger.Nop())

	c.Upsert(entity.Produto{ID: "a", Custo: decimal.RequireFromString("2.00"), Estoque: 3})
	c.Upsert(entity.Produto{ID: "b", Custo: decimal.RequireFromString("1.50"), Estoque: 4})

	assert.True(t, c.ValorEmEstoque().Equal(decimal.RequireFromString("12.00")), "2*3 + 1.5*4")
	assert.Equal(t, 7, c.UnidadesEmEstoque())
}

func TestRecarregar_RefleteEscritaExterna(t *testing.T) {
	c, store, wb := novoCatalogo(t)
	wb.FlushAll()

	// Outra instância escreve direto no store.
	require.NoError(t, store.Set(localstore.ChaveProdutos, `[{"id":"x","nome":"Externo","preco":"1.00","custo":"0.50","estoque":9}]`))
	c.Recarregar()

	p, err := c.BuscarPorID("x")
	require.NoError(t, err)
	assert.Equal(t, "Externo", p.Nome)
	assert.Equal(t, 9, p.Estoque)
}

func TestChaveBusca(t *testing.T) {
	assert.Equal(t, "agua com acucar", catalog.ChaveBusca("  Água com Açúcar "))
	assert.Equal(t, "", catalog.ChaveBusca("   "))
}
