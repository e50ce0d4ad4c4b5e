package vendors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

func novoRegistro(t *testing.T) (*vendors.Registro, localstore.Store) {
	t.Helper()
	store := localstore.NewMemory()
	return vendors.New(store, logger.Nop()), store
}

func TestCadastrar_SelecionaAutomaticamente(t *testing.T) {
	r, _ := novoRegistro(t)

	v, err := r.Cadastrar("  Maria  ", "(61) 99999-0000", "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Maria", v.Nome, "nome aparado")
	assert.Equal(t, entity.VendedorAtivo, v.Status, "status padrão ativo")

	selecionado := r.Selecionado()
	require.NotNil(t, selecionado)
	assert.Equal(t, v.ID, selecionado.ID, "recém-cadastrado vira o selecionado")
}

func TestCadastrar_Validacao(t *testing.T) {
	r, _ := novoRegistro(t)

	_, err := r.Cadastrar("   ", "", "")
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida)

	_, err = r.Cadastrar("João", "", "aposentado")
	assert.ErrorIs(t, err, domain.ErrEntradaInvalida, "status fora do vocabulário")
}

func TestAtualizar(t *testing.T) {
	r, _ := novoRegistro(t)
	v, _ := r.Cadastrar("Maria", "", entity.VendedorAtivo)

	atualizado, err := r.Atualizar(v.ID, "Maria Silva", "maria@loja.com", entity.VendedorFerias)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", atualizado.Nome)
	assert.Equal(t, entity.VendedorFerias, atualizado.Status)

	_, err = r.Atualizar("nao-existe", "Alguém", "", entity.VendedorAtivo)
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado)
}

func TestRemover_LimpaSelecao(t *testing.T) {
	r, _ := novoRegistro(t)
	a, _ := r.Cadastrar("Ana", "", "")
	b, _ := r.Cadastrar("Bruno", "", "")

	// Bruno é o selecionado (último cadastro).
	r.Remover(b.ID)
	assert.Nil(t, r.Selecionado(), "remover o selecionado limpa a seleção")
	assert.Len(t, r.Listar(""), 1)

	require.NoError(t, r.Selecionar(a.ID))
	r.Remover("id-inexistente")
	assert.NotNil(t, r.Selecionado(), "remoção de desconhecido não afeta a seleção")
}

func TestListar_FiltroPorStatus(t *testing.T) {
	r, _ := novoRegistro(t)
	r.Cadastrar("Ana", "", entity.VendedorAtivo)
	r.Cadastrar("Bruno", "", entity.VendedorFerias)
	r.Cadastrar("Carla", "", entity.VendedorInativo)

	assert.Len(t, r.Listar(""), 3)
	assert.Len(t, r.Listar("todos"), 3)
	assert.Len(t, r.Listar(entity.VendedorAtivo), 1)
	assert.Len(t, r.Listar(entity.VendedorFerias), 1)
}

func TestSelecionar(t *testing.T) {
	r, _ := novoRegistro(t)
	v, _ := r.Cadastrar("Ana", "", "")

	assert.ErrorIs(t, r.Selecionar("nao-existe"), domain.ErrNaoEncontrado)

	require.NoError(t, r.Selecionar(""))
	assert.Nil(t, r.Selecionado(), "id vazio limpa a seleção")

	require.NoError(t, r.Selecionar(v.ID))
	require.NotNil(t, r.Selecionado())
}

// Outra instância lendo o mesmo store enxerga vendedores e seleção.
func TestRegistro_PersisteEReidrata(t *testing.T) {
	r, store := novoRegistro(t)
	v, _ := r.Cadastrar("Ana", "contato", entity.VendedorAtivo)

	outro := vendors.New(store, logger.Nop())
	assert.Len(t, outro.Listar(""), 1)
	selecionado := outro.Selecionado()
	require.NotNil(t, selecionado)
	assert.Equal(t, v.ID, selecionado.ID, "a seleção automática do cadastro é durável")

	// Remover o selecionado também limpa a seleção durável.
	r.Remover(v.ID)
	terceiro := vendors.New(store, logger.Nop())
	assert.Empty(t, terceiro.Listar(""))
	assert.Nil(t, terceiro.Selecionado(), "a seleção limpa não reaparece na reidratação")
}

func TestCorresponde_IDouNomeDeFallback(t *testing.T) {
	r, _ := novoRegistro(t)
	v, _ := r.Cadastrar("Maria Silva", "", "")

	assert.True(t, r.Corresponde(&entity.RefVendedor{ID: v.ID, Nome: "Qualquer"}, v.ID), "id casa direto")

	// Registro antigo com id divergente mas mesmo nome.
	ref := &entity.RefVendedor{ID: "id-antigo", Nome: "  maria silva "}
	assert.True(t, r.Corresponde(ref, v.ID), "fallback por nome normalizado")

	assert.False(t, r.Corresponde(&entity.RefVendedor{ID: "x", Nome: "Outra"}, v.ID))
	assert.False(t, r.Corresponde(nil, v.ID), "venda sem vendedor nunca casa")
	assert.False(t, r.Corresponde(ref, ""), "sem filtro não há casamento")
}
