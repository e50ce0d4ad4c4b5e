package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
)

// Relatorios calcula as leituras derivadas consumidas pelos painéis:
// resumo financeiro, vendas por dia, formas de pagamento e giro de estoque.
// Tudo por varredura linear sobre os snapshots do núcleo.
type Relatorios struct {
	catalogo    *catalog.Catalogo
	ledger      *inventory.Ledger
	coordenador *checkout.Coordenador
}

// New constrói o caso de uso.
func New(catalogo *catalog.Catalogo, ledger *inventory.Ledger, coordenador *checkout.Coordenador) *Relatorios {
	return &Relatorios{catalogo: catalogo, ledger: ledger, coordenador: coordenador}
}

// Resumo agrega vendas, custos e lucro de um conjunto de vendas.
type Resumo struct {
	Vendas decimal.Decimal `json:"vendas"`
	Custos decimal.Decimal `json:"custos"`
	Lucro  decimal.Decimal `json:"lucro"`
}

// ResumoFinanceiro calcula o resumo do período, opcionalmente filtrado por
// vendedor.
func (r *Relatorios) ResumoFinanceiro(inicio, fim *time.Time, vendedorID string) Resumo {
	resumo := Resumo{Vendas: decimal.Zero, Custos: decimal.Zero, Lucro: decimal.Zero}
	for _, v := range r.coordenador.Vendas(inicio, fim, vendedorID) {
		resumo.Vendas = resumo.Vendas.Add(v.TotalVenda)
		resumo.Custos = resumo.Custos.Add(v.TotalCusto)
	}
	resumo.Lucro = resumo.Vendas.Sub(resumo.Custos)
	return resumo
}

// DiaResumo é o agregado de um dia de vendas.
type DiaResumo struct {
	Dia    string          `json:"dia"` // 2006-01-02
	Vendas decimal.Decimal `json:"vendas"`
	Lucro  decimal.Decimal `json:"lucro"`
	Conta  int             `json:"conta"`
}

// VendasPorDia agrega as vendas do período por dia-calendário, em ordem
// cronológica.
func (r *Relatorios) VendasPorDia(inicio, fim *time.Time) []DiaResumo {
	porDia := make(map[string]*DiaResumo)
	for _, v := range r.coordenador.Vendas(inicio, fim, "") {
		dia := v.Data.Format("2006-01-02")
		agg, ok := porDia[dia]
		if !ok {
			agg = &DiaResumo{Dia: dia, Vendas: decimal.Zero, Lucro: decimal.Zero}
			porDia[dia] = agg
		}
		agg.Vendas = agg.Vendas.Add(v.TotalVenda)
		agg.Lucro = agg.Lucro.Add(v.Lucro)
		agg.Conta++
	}
	out := make([]DiaResumo, 0, len(porDia))
	for _, agg := range porDia {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dia < out[j].Dia })
	return out
}

// FormaPagamento é o agregado de uma forma de pagamento.
type FormaPagamento struct {
	Conta int             `json:"conta"`
	Total decimal.Decimal `json:"total"`
}

// FormasPagamento agrega todo o histórico por forma de pagamento.
func (r *Relatorios) FormasPagamento() map[string]FormaPagamento {
	formas := map[string]FormaPagamento{
		entity.PagamentoDinheiro: {Total: decimal.Zero},
		entity.PagamentoCredito:  {Total: decimal.Zero},
		entity.PagamentoDebito:   {Total: decimal.Zero},
		entity.PagamentoPix:      {Total: decimal.Zero},
	}
	for _, v := range r.coordenador.Vendas(nil, nil, "") {
		f, ok := formas[v.FormaPagamento]
		if !ok {
			continue
		}
		f.Conta++
		f.Total = f.Total.Add(v.TotalVenda)
		formas[v.FormaPagamento] = f
	}
	return formas
}

// Rotatividade devolve o giro de estoque dos últimos 30 dias em percentual
// (saídas / unidades em estoque, teto em 100).
func (r *Relatorios) Rotatividade() int {
	unidades := r.catalogo.UnidadesEmEstoque()
	if unidades <= 0 {
		return 0
	}
	giro := (r.ledger.SaidasUltimos30Dias()*100 + unidades/2) / unidades
	if giro > 100 {
		giro = 100
	}
	return giro
}

// Estoque resume o estado corrente do catálogo.
type Estoque struct {
	TotalProdutos   int             `json:"totalProdutos"`
	BaixoEstoque    int             `json:"baixoEstoque"`
	ValorEmEstoque  decimal.Decimal `json:"valorEmEstoque"`
	Rotatividade    int             `json:"rotatividade"`
	ReceitaDoDia    decimal.Decimal `json:"receitaDoDia"`
	TotalMovimentos int             `json:"totalMovimentos"`
}

// ResumoEstoque calcula os indicadores do painel de estoque.
func (r *Relatorios) ResumoEstoque() Estoque {
	produtos := r.catalogo.Listar()
	baixo := 0
	for _, p := range produtos {
		if p.EstoqueBaixo() {
			baixo++
		}
	}
	return Estoque{
		TotalProdutos:   len(produtos),
		BaixoEstoque:    baixo,
		ValorEmEstoque:  r.catalogo.ValorEmEstoque(),
		Rotatividade:    r.Rotatividade(),
		ReceitaDoDia:    r.coordenador.TotalDoDia(),
		TotalMovimentos: r.ledger.Tamanho(),
	}
}
