package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// ObservacaoClamp marca o movimento de uma linha cuja baixa foi reduzida ao
// estoque disponível. Política leniente explícita: o carrinho já foi
// validado na entrada, e a saída durante a venda não pode travar o caixa.
const ObservacaoClamp = "quantidade ajustada ao estoque disponível"

// ItemCarrinho é uma linha do carrinho na entrada do fechamento.
type ItemCarrinho struct {
	ProdutoID  string
	Quantidade int
}

// Fechamento é a entrada de FinalizarVenda.
type Fechamento struct {
	Itens          []ItemCarrinho
	FormaPagamento string
	ValorRecebido  decimal.Decimal // exigido quando FormaPagamento é dinheiro
	VendedorID     string          // vazio usa o vendedor selecionado no caixa
}

// Resultado é a saída de um fechamento bem sucedido.
type Resultado struct {
	Venda entity.Venda
	Troco decimal.Decimal
}

// Coordenador orquestra o fechamento de venda: validação do pagamento,
// baixa de estoque linha a linha, apêndice no razão, registro da venda e
// atualização da receita do dia, como unidade atômica de melhor esforço.
// Também é o dono do histórico de vendas e do agregado diário.
type Coordenador struct {
	mu       sync.Mutex
	vendas   []entity.Venda
	dia      string
	totalDia decimal.Decimal

	catalogo   *catalog.Catalogo
	ledger     *inventory.Ledger
	vendedores *vendors.Registro
	store      localstore.Store
	wb         *writeback.Coalescer
	remoto     remote.Mirror
	bus        *events.Bus
	log        *logger.Logger
	agora      func() time.Time
}

// New hidrata o histórico de vendas e a receita do dia a partir do store.
func New(
	catalogo *catalog.Catalogo,
	ledger *inventory.Ledger,
	vendedores *vendors.Registro,
	store localstore.Store,
	wb *writeback.Coalescer,
	remoto remote.Mirror,
	bus *events.Bus,
	log *logger.Logger,
) *Coordenador {
	c := &Coordenador{
		catalogo:   catalogo,
		ledger:     ledger,
		vendedores: vendedores,
		store:      store,
		wb:         wb,
		remoto:     remoto,
		bus:        bus,
		log:        log,
		agora:      time.Now,
	}
	c.Recarregar()
	return c
}

// Recarregar relê histórico de vendas e receita do dia do store.
func (c *Coordenador) Recarregar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw, ok, err := c.store.Get(localstore.ChaveVendas); err != nil {
		c.log.Error().Err(err).Msg("carregar vendas")
	} else if ok {
		var vendas []entity.Venda
		if err := json.Unmarshal([]byte(raw), &vendas); err != nil {
			c.log.Error().Err(err).Msg("decodificar vendas persistidas")
		} else {
			c.vendas = vendas
		}
	}

	c.dia = c.agora().Format("2006-01-02")
	c.totalDia = decimal.Zero
	if raw, ok, _ := c.store.Get(localstore.PrefixoVendasDia + c.dia); ok {
		if total, err := decimal.NewFromString(raw); err == nil {
			c.totalDia = total
		}
	}
}

// FinalizarVenda executa o fechamento. Falhas de validação abortam sem
// nenhum efeito colateral; depois disso cada linha baixa estoque e gera um
// movimento de saída com snapshots de preço e custo.
func (c *Coordenador) FinalizarVenda(in Fechamento) (*Resultado, error) {
	// ── Validação: único ponto de aborto limpo ────────────────────────────
	if len(in.Itens) == 0 {
		return nil, domain.ErrCarrinhoVazio
	}
	if in.FormaPagamento == "" {
		return nil, domain.ErrFormaPagamentoAusente
	}
	if !entity.FormaPagamentoValida(in.FormaPagamento) {
		return nil, fmt.Errorf("%w: forma de pagamento %q", domain.ErrEntradaInvalida, in.FormaPagamento)
	}

	total := decimal.Zero
	totalCusto := decimal.Zero
	itens := make([]entity.ItemVenda, 0, len(in.Itens))
	produtos := make([]entity.Produto, 0, len(in.Itens))
	for _, item := range in.Itens {
		if item.Quantidade <= 0 {
			return nil, fmt.Errorf("%w: quantidade deve ser positiva", domain.ErrEntradaInvalida)
		}
		produto, err := c.catalogo.BuscarPorID(item.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("produto %s: %w", item.ProdutoID, err)
		}
		qtd := decimal.NewFromInt(int64(item.Quantidade))
		total = total.Add(produto.Preco.Mul(qtd))
		totalCusto = totalCusto.Add(produto.Custo.Mul(qtd))
		itens = append(itens, entity.ItemVenda{
			ProdutoID:  produto.ID,
			Nome:       produto.Nome,
			Preco:      produto.Preco,
			Quantidade: item.Quantidade,
		})
		produtos = append(produtos, produto)
	}

	troco := decimal.Zero
	var valorRecebido *decimal.Decimal
	if in.FormaPagamento == entity.PagamentoDinheiro {
		if in.ValorRecebido.LessThan(total) {
			return nil, domain.ErrValorInsuficiente
		}
		troco = in.ValorRecebido.Sub(total)
		v := in.ValorRecebido
		valorRecebido = &v
	}

	vendaID := uuid.New().String()
	agora := c.agora()
	vendedor := c.refVendedor(in.VendedorID)

	// ── Baixa de estoque: linha a linha, com clamp explícito ──────────────
	// Este laço não é atômico: uma falha no meio deixaria as linhas
	// anteriores aplicadas. Todas as operações aqui são síncronas e em
	// processo; o risco residual está documentado no projeto.
	for i, item := range in.Itens {
		produto := produtos[i]
		antes, depois, aplicado, err := c.catalogo.AlterarEstoque(item.ProdutoID, -item.Quantidade, true)
		if err != nil {
			// Produto sumiu entre a validação e a baixa (remoção
			// concorrente): pula a linha, preservando as demais.
			c.log.Warn().Err(err).Str("produto", item.ProdutoID).Msg("linha de venda sem produto na baixa")
			continue
		}
		quantidadeReal := -aplicado
		observacao := ""
		if quantidadeReal != item.Quantidade {
			observacao = ObservacaoClamp
			c.log.Warn().
				Str("produto", item.ProdutoID).
				Int("pedido", item.Quantidade).
				Int("aplicado", quantidadeReal).
				Msg("baixa de venda reduzida ao estoque disponível")
		}
		c.ledger.Registrar(entity.Movimento{
			Data:          agora,
			Tipo:          entity.TipoSaida,
			Origem:        entity.OrigemVenda,
			VendaID:       vendaID,
			ProdutoID:     produto.ID,
			Nome:          produto.Nome,
			Codigo:        produto.Codigo,
			Categoria:     produto.Categoria,
			Fornecedor:    produto.Fornecedor,
			Quantidade:    quantidadeReal,
			EstoqueAntes:  antes,
			EstoqueDepois: depois,
			PrecoUnitario: produto.Preco,
			CustoUnitario: produto.Custo,
			Vendedor:      vendedor,
			Observacao:    observacao,
		})
	}

	// ── Registro: venda imutável + receita do dia ─────────────────────────
	venda := entity.Venda{
		ID:             vendaID,
		Data:           agora,
		Itens:          itens,
		TotalVenda:     total,
		TotalCusto:     totalCusto,
		Lucro:          total.Sub(totalCusto),
		FormaPagamento: in.FormaPagamento,
		ValorRecebido:  valorRecebido,
		Vendedor:       vendedor,
	}
	c.registrarVenda(venda)
	c.incrementarTotalDia(total)

	// ── Concluído: colaboradores de UI reagem à notificação ───────────────
	c.bus.Publicar(events.Evento{Nome: events.VendasAlteradas, Canal: events.CanalLocal})

	return &Resultado{Venda: venda, Troco: troco}, nil
}

// Vendas devolve o histórico, opcionalmente filtrado por período (fim
// inclusivo até o fim do dia) e por vendedor.
func (c *Coordenador) Vendas(inicio, fim *time.Time, vendedorID string) []entity.Venda {
	c.mu.Lock()
	vendas := make([]entity.Venda, len(c.vendas))
	copy(vendas, c.vendas)
	c.mu.Unlock()

	var out []entity.Venda
	for _, v := range vendas {
		if inicio != nil && v.Data.Before(*inicio) {
			continue
		}
		if fim != nil {
			limite := time.Date(fim.Year(), fim.Month(), fim.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), fim.Location())
			if v.Data.After(limite) {
				continue
			}
		}
		if vendedorID != "" && !c.vendedores.Corresponde(v.Vendedor, vendedorID) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// TotalDoDia devolve a receita acumulada do dia corrente.
func (c *Coordenador) TotalDoDia() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dia := c.agora().Format("2006-01-02"); dia != c.dia {
		return decimal.Zero
	}
	return c.totalDia
}

// SubstituirVendas troca o histórico pelo snapshot remoto (mais novo
// primeiro no pull; mais antigo primeiro em memória).
func (c *Coordenador) SubstituirVendas(vendas []entity.Venda, canal string) {
	invertido := make([]entity.Venda, len(vendas))
	for i, v := range vendas {
		invertido[len(vendas)-1-i] = v
	}
	c.mu.Lock()
	c.vendas = invertido
	c.salvarVendasLocked()
	c.mu.Unlock()
	c.bus.Publicar(events.Evento{Nome: events.VendasAlteradas, Canal: canal})
}

func (c *Coordenador) refVendedor(id string) *entity.RefVendedor {
	var vendedor *entity.Vendedor
	if id != "" {
		for _, v := range c.vendedores.Listar("") {
			if v.ID == id {
				vv := v
				vendedor = &vv
				break
			}
		}
	} else {
		vendedor = c.vendedores.Selecionado()
	}
	if vendedor == nil {
		return nil
	}
	return &entity.RefVendedor{ID: vendedor.ID, Nome: vendedor.Nome, Contato: vendedor.Contato}
}

func (c *Coordenador) registrarVenda(venda entity.Venda) {
	c.mu.Lock()
	c.vendas = append(c.vendas, venda)
	c.salvarVendasLocked()
	c.mu.Unlock()

	go c.remoto.AddVenda(context.Background(), venda)
}

// incrementarTotalDia soma ao agregado do dia, virando o contador quando a
// data muda. Contador desnormalizado: não derivável das vendas sem re-scan.
func (c *Coordenador) incrementarTotalDia(valor decimal.Decimal) {
	c.mu.Lock()
	dia := c.agora().Format("2006-01-02")
	if dia != c.dia {
		c.dia = dia
		c.totalDia = decimal.Zero
	}
	c.totalDia = c.totalDia.Add(valor)
	chave := localstore.PrefixoVendasDia + c.dia
	payload := c.totalDia.String()
	c.mu.Unlock()

	c.wb.Agendar(chave, func() error {
		return c.store.Set(chave, payload)
	}, 0)
}

// salvarVendasLocked agenda a escrita coalescida do histórico. Chamar com
// c.mu segurado.
func (c *Coordenador) salvarVendasLocked() {
	dados, err := json.Marshal(c.vendas)
	if err != nil {
		c.log.Error().Err(err).Msg("serializar vendas")
		return
	}
	payload := string(dados)
	c.wb.Agendar(localstore.ChaveVendas, func() error {
		return c.store.Set(localstore.ChaveVendas, payload)
	}, 0)
}
