package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
)

// ProdutoRequest dados para criar ou atualizar um produto.
type ProdutoRequest struct {
	ID          string          `json:"id,omitempty"`
	Nome        string          `json:"nome"`
	Codigo      string          `json:"codigo,omitempty"`
	Categoria   string          `json:"categoria,omitempty"`
	Fornecedor  string          `json:"fornecedor,omitempty"`
	Descricao   string          `json:"descricao,omitempty"`
	Localizacao string          `json:"localizacao,omitempty"`
	Preco       decimal.Decimal `json:"preco"`
	Custo       decimal.Decimal `json:"custo"`
	Estoque     int             `json:"estoque"`
	Minimo      int             `json:"minimo,omitempty"`
}

// Entidade converte a requisição em entidade.
func (r ProdutoRequest) Entidade() entity.Produto {
	return entity.Produto{
		ID:          r.ID,
		Nome:        r.Nome,
		Codigo:      r.Codigo,
		Categoria:   r.Categoria,
		Fornecedor:  r.Fornecedor,
		Descricao:   r.Descricao,
		Localizacao: r.Localizacao,
		Preco:       r.Preco,
		Custo:       r.Custo,
		Estoque:     r.Estoque,
		Minimo:      r.Minimo,
	}
}

// AjusteRequest delta assinado de estoque.
type AjusteRequest struct {
	Delta int `json:"delta"`
}

// EntradaRapidaRequest entrada ou saída manual de estoque.
type EntradaRapidaRequest struct {
	ProdutoID  string `json:"produtoId"`
	Tipo       string `json:"tipo"` // entrada | saida
	Quantidade int    `json:"quantidade"`
	Observacao string `json:"observacao,omitempty"`
}

// ItemCarrinhoRequest uma linha do carrinho.
type ItemCarrinhoRequest struct {
	ProdutoID  string `json:"produtoId"`
	Quantidade int    `json:"quantidade"`
}

// FechamentoRequest dados para finalizar uma venda.
type FechamentoRequest struct {
	Itens          []ItemCarrinhoRequest `json:"itens"`
	FormaPagamento string                `json:"formaPagamento"`
	ValorRecebido  *decimal.Decimal      `json:"valorRecebido,omitempty"`
	VendedorID     string                `json:"vendedorId,omitempty"`
}

// VendaResponse resultado da venda finalizada.
type VendaResponse struct {
	Venda entity.Venda     `json:"venda"`
	Troco *decimal.Decimal `json:"troco,omitempty"`
}

// VendedorRequest dados de cadastro ou edição de vendedor.
type VendedorRequest struct {
	Nome    string `json:"nome"`
	Contato string `json:"contato,omitempty"`
	Status  string `json:"status,omitempty"`
}

// SelecaoRequest seleciona o vendedor do caixa (id vazio limpa).
type SelecaoRequest struct {
	ID string `json:"id"`
}

// PixCobrancaRequest dados de uma cobrança pix.
type PixCobrancaRequest struct {
	Valor decimal.Decimal `json:"valor"`
	TxID  string          `json:"txid,omitempty"`
	Info  string          `json:"info,omitempty"`
}

// PixPayloadResponse código copia-e-cola gerado.
type PixPayloadResponse struct {
	Payload string `json:"payload"`
}
