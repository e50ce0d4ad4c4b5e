package inventory

import (
	"fmt"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Movimentacao cobre as operações manuais de estoque fora do caixa: entrada/
// saída rápida e ajuste. Cada operação muta um produto, gera um movimento e
// agenda persistência, o mesmo padrão do checkout em escopo menor.
// Diferente da venda, saídas que excedem o estoque são rejeitadas antes de
// qualquer mutação.
type Movimentacao struct {
	catalogo *catalog.Catalogo
	ledger   *Ledger
	log      *logger.Logger
}

// NewMovimentacao constrói o caso de uso.
func NewMovimentacao(catalogo *catalog.Catalogo, ledger *Ledger, log *logger.Logger) *Movimentacao {
	return &Movimentacao{catalogo: catalogo, ledger: ledger, log: log}
}

// EntradaRapida registra uma entrada ou saída manual de um produto.
// tipo deve ser entrada ou saida; quantidade deve ser positiva.
func (m *Movimentacao) EntradaRapida(produtoID, tipo string, quantidade int, observacao string) (entity.Movimento, error) {
	if tipo != entity.TipoEntrada && tipo != entity.TipoSaida {
		return entity.Movimento{}, fmt.Errorf("%w: tipo %q", domain.ErrEntradaInvalida, tipo)
	}
	if quantidade <= 0 {
		return entity.Movimento{}, fmt.Errorf("%w: quantidade deve ser positiva", domain.ErrEntradaInvalida)
	}
	produto, err := m.catalogo.BuscarPorID(produtoID)
	if err != nil {
		return entity.Movimento{}, err
	}

	delta := quantidade
	if tipo == entity.TipoSaida {
		delta = -quantidade
	}
	antes, depois, _, err := m.catalogo.AlterarEstoque(produtoID, delta, false)
	if err != nil {
		return entity.Movimento{}, err
	}

	mov := m.ledger.Registrar(entity.Movimento{
		Tipo:          tipo,
		Origem:        entity.OrigemEntradaRapida,
		ProdutoID:     produto.ID,
		Nome:          produto.Nome,
		Codigo:        produto.Codigo,
		Categoria:     produto.Categoria,
		Fornecedor:    produto.Fornecedor,
		Quantidade:    quantidade,
		EstoqueAntes:  antes,
		EstoqueDepois: depois,
		Observacao:    observacao,
	})
	return mov, nil
}

// Ajustar aplica um delta assinado ao estoque (correção manual). O movimento
// resultante é do tipo ajuste, com quantidade sem sinal; o sentido fica nos
// snapshots antes/depois. Um delta que deixaria o estoque negativo é
// rejeitado sem efeitos colaterais.
func (m *Movimentacao) Ajustar(produtoID string, delta int) (entity.Movimento, error) {
	if delta == 0 {
		return entity.Movimento{}, fmt.Errorf("%w: delta zero", domain.ErrEntradaInvalida)
	}
	produto, err := m.catalogo.BuscarPorID(produtoID)
	if err != nil {
		return entity.Movimento{}, err
	}

	antes, depois, _, err := m.catalogo.AlterarEstoque(produtoID, delta, false)
	if err != nil {
		return entity.Movimento{}, err
	}

	quantidade := delta
	if delta < 0 {
		quantidade = -delta
	}
	mov := m.ledger.Registrar(entity.Movimento{
		Tipo:          entity.TipoAjuste,
		Origem:        entity.OrigemAjuste,
		ProdutoID:     produto.ID,
		Nome:          produto.Nome,
		Codigo:        produto.Codigo,
		Categoria:     produto.Categoria,
		Fornecedor:    produto.Fornecedor,
		Quantidade:    quantidade,
		EstoqueAntes:  antes,
		EstoqueDepois: depois,
	})
	return mov, nil
}
