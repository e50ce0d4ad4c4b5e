package entity

import "github.com/shopspring/decimal"

// Produto representa um item do catálogo. Estoque é o estado autoritativo
// corrente; o histórico de como ele chegou a esse valor vive no razão de
// movimentos. Invariantes: Estoque >= 0 sempre; Preco e Custo não negativos;
// ID único e estável durante a vida do produto.
type Produto struct {
	ID          string          `json:"id"`
	Nome        string          `json:"nome"`
	Preco       decimal.Decimal `json:"preco"`
	Custo       decimal.Decimal `json:"custo"`
	Estoque     int             `json:"estoque"`
	Minimo      int             `json:"minimo"`
	Codigo      string          `json:"codigo"`
	Categoria   string          `json:"categoria"`
	Fornecedor  string          `json:"fornecedor"`
	Descricao   string          `json:"descricao"`
	Localizacao string          `json:"localizacao"`
}

// EstoqueBaixo indica se o produto está abaixo do limite mínimo (limite
// padrão de 5 unidades quando Minimo não foi informado).
func (p Produto) EstoqueBaixo() bool {
	limite := p.Minimo
	if limite <= 0 {
		limite = 5
	}
	return p.Estoque > 0 && p.Estoque <= limite
}
