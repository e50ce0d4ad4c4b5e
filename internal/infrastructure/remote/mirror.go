package remote

import (
	"context"

	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
)

// Snapshot é o estado remoto puxado de uma vez: catálogo completo e as
// coleções de movimentos e vendas limitadas aos 250 documentos mais novos.
type Snapshot struct {
	Produtos   []entity.Produto
	Movimentos []entity.Movimento
	Vendas     []entity.Venda
}

// Mirror é o espelho remoto opcional, de consistência eventual. Os métodos
// de push nunca devolvem erro: falhas são registradas em log e engolidas; a
// mutação local que as disparou não sofre rollback. Política de merge por
// classe de campo: estoque só se move por incrementos atômicos no servidor,
// todos os demais campos do produto são last-writer-wins.
type Mirror interface {
	Habilitado() bool

	// UpsertProdutos faz merge-upsert por documento (sem tocar em estoque).
	UpsertProdutos(ctx context.Context, produtos []entity.Produto)

	// AjustarEstoque aplica um incremento atômico no servidor, evitando a
	// corrida read-modify-write que um overwrite completo teria.
	AjustarEstoque(ctx context.Context, produtoID string, delta int)

	// AddMovimento e AddVenda criam documentos novos, nunca atualizados.
	AddMovimento(ctx context.Context, mov entity.Movimento)
	AddVenda(ctx context.Context, venda entity.Venda)

	// Puxar lê o snapshot remoto corrente (usado pelo laço de pull).
	Puxar(ctx context.Context) (*Snapshot, error)
}

var _ Mirror = Desativado{}

// Desativado é o espelho nulo: todo push é no-op e Puxar não devolve dados.
// É o modo de operação quando não há configuração remota válida.
type Desativado struct{}

func (Desativado) Habilitado() bool                                        { return false }
func (Desativado) UpsertProdutos(context.Context, []entity.Produto)        {}
func (Desativado) AjustarEstoque(context.Context, string, int)             {}
func (Desativado) AddMovimento(context.Context, entity.Movimento)          {}
func (Desativado) AddVenda(context.Context, entity.Venda)                  {}
func (Desativado) Puxar(context.Context) (*Snapshot, error)                { return nil, nil }
