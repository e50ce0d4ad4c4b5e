package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formas de pagamento aceitas no caixa.
const (
	PagamentoDinheiro = "dinheiro"
	PagamentoCredito  = "credito"
	PagamentoDebito   = "debito"
	PagamentoPix      = "pix"
)

// FormaPagamentoValida diz se o identificador corresponde a uma forma aceita.
func FormaPagamentoValida(f string) bool {
	switch f {
	case PagamentoDinheiro, PagamentoCredito, PagamentoDebito, PagamentoPix:
		return true
	}
	return false
}

// ItemVenda é uma linha do carrinho com snapshot de preço no fechamento.
type ItemVenda struct {
	ProdutoID  string          `json:"produtoId"`
	Nome       string          `json:"nome"`
	Preco      decimal.Decimal `json:"preco"`
	Quantidade int             `json:"quantidade"`
}

// Venda registra um fechamento de caixa. Criada exatamente uma vez por
// checkout, imutável depois. TotalVenda = Σ preco*quantidade;
// Lucro = TotalVenda - TotalCusto.
type Venda struct {
	ID             string           `json:"id"`
	Data           time.Time        `json:"data"`
	Itens          []ItemVenda      `json:"itens"`
	TotalVenda     decimal.Decimal  `json:"totalVenda"`
	TotalCusto     decimal.Decimal  `json:"totalCusto"`
	Lucro          decimal.Decimal  `json:"lucro"`
	FormaPagamento string           `json:"formaPagamento"`
	ValorRecebido  *decimal.Decimal `json:"valorRecebido,omitempty"`
	Vendedor       *RefVendedor     `json:"vendedor,omitempty"`
}
