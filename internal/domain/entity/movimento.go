package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimento de estoque.
const (
	TipoEntrada = "entrada"
	TipoSaida   = "saida"
	TipoAjuste  = "ajuste"
)

// Origens de movimento.
const (
	OrigemVenda         = "venda"
	OrigemAjuste        = "ajuste"
	OrigemEntradaRapida = "entrada-rapida"
)

// Movimento é uma entrada do razão de estoque. Append-only: criado a cada
// ação que afeta estoque, nunca alterado ou removido. Carrega snapshots de
// estoque antes/depois e, quando vem de venda, snapshots de preço e custo
// para apuração de lucro.
type Movimento struct {
	ID            string          `json:"id"`
	Data          time.Time       `json:"data"`
	Tipo          string          `json:"tipo"`
	Origem        string          `json:"origem"`
	VendaID       string          `json:"vendaId,omitempty"`
	ProdutoID     string          `json:"produtoId"`
	Nome          string          `json:"nome,omitempty"`
	Codigo        string          `json:"codigo,omitempty"`
	Categoria     string          `json:"categoria,omitempty"`
	Fornecedor    string          `json:"fornecedor,omitempty"`
	Quantidade    int             `json:"quantidade"`
	EstoqueAntes  int             `json:"estoqueAntes"`
	EstoqueDepois int             `json:"estoqueDepois"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	CustoUnitario decimal.Decimal `json:"custoUnitario"`
	Vendedor      *RefVendedor    `json:"vendedor,omitempty"`
	Observacao    string          `json:"observacao,omitempty"`
}

// Delta devolve a quantidade com sinal: entradas somam, saídas subtraem.
// Ajustes tiram o sinal dos snapshots de estoque, já que a quantidade é
// registrada sem sinal.
func (m Movimento) Delta() int {
	switch m.Tipo {
	case TipoSaida:
		return -m.Quantidade
	case TipoAjuste:
		return m.EstoqueDepois - m.EstoqueAntes
	}
	return m.Quantidade
}
