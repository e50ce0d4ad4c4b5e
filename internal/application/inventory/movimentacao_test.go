package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

func novaMovimentacao(t *testing.T) (*inventory.Movimentacao, *catalog.Catalogo, *inventory.Ledger) {
	t.Helper()
	store := localstore.NewMemory()
	wb := writeback.New(5*time.Millisecond, logger.Nop())
	bus := events.New()
	cat := catalog.New(store, wb, remote.Desativado{}, bus, logger.Nop())
	led := inventory.NewLedger(store, wb, remote.Desativado{}, bus, logger.Nop())
	return inventory.NewMovimentacao(cat, led, logger.Nop()), cat, led
}

func TestEntradaRapida_Entrada(t *testing.T) {
	m, cat, led := novaMovimentacao(t)

	// Produto 1 (demo) começa com 50 unidades.
	mov, err := m.EntradaRapida("1", entity.TipoEntrada, 10, "reposição")
	require.NoError(t, err)
	assert.Equal(t, entity.TipoEntrada, mov.Tipo)
	assert.Equal(t, entity.OrigemEntradaRapida, mov.Origem)
	assert.Equal(t, 50, mov.EstoqueAntes)
	assert.Equal(t, 60, mov.EstoqueDepois)
	assert.Equal(t, "reposição", mov.Observacao)

	p, _ := cat.BuscarPorID("1")
	assert.Equal(t, 60, p.Estoque)
	assert.Equal(t, 1, led.Tamanho())
}

func TestEntradaRapida_SaidaDentroDoEstoque(t *testing.T) {
	m, cat, _ := novaMovimentacao(t)

	mov, err := m.EntradaRapida("1", entity.TipoSaida, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 30, mov.EstoqueDepois)

	p, _ := cat.BuscarPorID("1")
	assert.Equal(t, 30, p.Estoque)
}

// Diferente da venda, a saída manual que excede o estoque é rejeitada por
// inteiro, sem clamp e sem movimento.
func TestEntradaRapida_SaidaExcedenteRejeitada(t *testing.T) {
	m, cat, led := novaMovimentacao(t)

	_, err := m.EntradaRapida("1", entity.TipoSaida, 51, "")
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)

	p, _ := cat.BuscarPorID("1")
	assert.Equal(t, 50, p.Estoque, "rejeição não toca o estoque")
	assert.Zero(t, led.Tamanho(), "rejeição não gera movimento")
}

func TestEntradaRapida_Validacao(t *testing.T) {
	m, _, _ := novaMovimentacao(t)

	_, err := m.EntradaRapida("1", "ajuste", 1, "")
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida, "tipo deve ser entrada ou saida")

	_, err = m.EntradaRapida("1", entity.TipoEntrada, 0, "")
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida)

	_, err = m.EntradaRapida("1", entity.TipoEntrada, -3, "")
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida)

	_, err = m.EntradaRapida("nao-existe", entity.TipoEntrada, 1, "")
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado)
}

func TestAjustar_DeltaPositivoENegativo(t *testing.T) {
	m, cat, _ := novaMovimentacao(t)

	mov, err := m.Ajustar("1", 5)
	require.NoError(t, err)
	assert.Equal(t, entity.TipoAjuste, mov.Tipo)
	assert.Equal(t, entity.OrigemAjuste, mov.Origem)
	assert.Equal(t, 5, mov.Quantidade)
	assert.Equal(t, 5, mov.Delta(), "sentido reconstruído dos snapshots")

	mov, err = m.Ajustar("1", -8)
	require.NoError(t, err)
	assert.Equal(t, entity.TipoAjuste, mov.Tipo)
	assert.Equal(t, 8, mov.Quantidade, "quantidade registrada sem sinal")
	assert.Equal(t, -8, mov.Delta())

	p, _ := cat.BuscarPorID("1")
	assert.Equal(t, 47, p.Estoque)
}

func TestAjustar_Validacao(t *testing.T) {
	m, cat, _ := novaMovimentacao(t)

	_, err := m.Ajustar("1", 0)
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida, "delta zero não gera movimento")

	_, err = m.Ajustar("1", -51)
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)

	p, _ := cat.BuscarPorID("1")
	assert.Equal(t, 50, p.Estoque)
}
