package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Catalogo mantém o conjunto autoritativo de produtos em memória, com índice
// id->produto reconstruído de forma preguiçosa (um replace remoto em bloco
// invalida o índice; a próxima consulta o refaz). Upsert não aplica regra de
// negócio: validação é responsabilidade do chamador.
type Catalogo struct {
	mu       sync.Mutex
	produtos []entity.Produto
	indice   map[string]int // posição na fatia; nil quando estragado

	store  localstore.Store
	wb     *writeback.Coalescer
	remoto remote.Mirror
	bus    *events.Bus
	log    *logger.Logger
}

// New hidrata o catálogo a partir do store. Sem a chave persistida, semeia
// os produtos de demonstração.
func New(store localstore.Store, wb *writeback.Coalescer, remoto remote.Mirror, bus *events.Bus, log *logger.Logger) *Catalogo {
	c := &Catalogo{store: store, wb: wb, remoto: remoto, bus: bus, log: log}
	c.Recarregar()
	return c
}

// Recarregar relê os produtos do store, normalizando campos opcionais de
// registros antigos. Também usado quando outra aba sinaliza mudança.
func (c *Catalogo) Recarregar() {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.store.Get(localstore.ChaveProdutos)
	if err != nil {
		c.log.Error().Err(err).Msg("carregar produtos")
	}
	if !ok {
		c.produtos = produtosDemo()
		c.indice = nil
		return
	}
	var produtos []entity.Produto
	if err := json.Unmarshal([]byte(raw), &produtos); err != nil {
		c.log.Error().Err(err).Msg("decodificar produtos persistidos")
		produtos = nil
	}
	c.produtos = normalizar(produtos)
	c.indice = nil
}

// Listar devolve um snapshot (cópia) de todos os produtos.
func (c *Catalogo) Listar() []entity.Produto {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entity.Produto, len(c.produtos))
	copy(out, c.produtos)
	return out
}

// BuscarPorID devolve o produto ou ErrNaoEncontrado.
func (c *Catalogo) BuscarPorID(id string) (entity.Produto, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.buscarPosicao(id)
	if !ok {
		return entity.Produto{}, domain.ErrNaoEncontrado
	}
	return c.produtos[pos], nil
}

// Upsert insere ou substitui um produto. Gera id quando vazio. Agenda a
// escrita coalescida e o merge-upsert remoto.
func (c *Catalogo) Upsert(p entity.Produto) entity.Produto {
	c.mu.Lock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if pos, ok := c.buscarPosicao(p.ID); ok {
		c.produtos[pos] = p
	} else {
		c.produtos = append(c.produtos, p)
		c.indice = nil
	}
	c.salvarLocked()
	c.mu.Unlock()

	go c.remoto.UpsertProdutos(context.Background(), []entity.Produto{p})
	c.bus.Publicar(events.Evento{Nome: events.CatalogoAlterado, Canal: events.CanalLocal})
	return p
}

// Remover exclui o produto do catálogo. Entradas históricas do razão que o
// referenciam não são tocadas.
func (c *Catalogo) Remover(id string) error {
	c.mu.Lock()
	pos, ok := c.buscarPosicao(id)
	if !ok {
		c.mu.Unlock()
		return domain.ErrNaoEncontrado
	}
	c.produtos = append(c.produtos[:pos], c.produtos[pos+1:]...)
	c.indice = nil
	c.salvarLocked()
	c.mu.Unlock()

	c.bus.Publicar(events.Evento{Nome: events.CatalogoAlterado, Canal: events.CanalLocal})
	return nil
}

// AlterarEstoque aplica um delta ao estoque do produto e devolve os valores
// antes/depois e a quantidade efetivamente aplicada. Com clamp, uma baixa
// maior que o disponível é reduzida ao estoque corrente (nunca fica
// negativo); sem clamp, o excesso é rejeitado com ErrEstoqueInsuficiente
// antes de qualquer mutação.
func (c *Catalogo) AlterarEstoque(id string, delta int, clamp bool) (antes, depois, aplicado int, err error) {
	c.mu.Lock()
	pos, ok := c.buscarPosicao(id)
	if !ok {
		c.mu.Unlock()
		return 0, 0, 0, domain.ErrNaoEncontrado
	}
	antes = c.produtos[pos].Estoque
	aplicado = delta
	if antes+delta < 0 {
		if !clamp {
			c.mu.Unlock()
			return antes, antes, 0, domain.ErrEstoqueInsuficiente
		}
		aplicado = -antes
	}
	depois = antes + aplicado
	c.produtos[pos].Estoque = depois
	c.salvarLocked()
	c.mu.Unlock()

	c.bus.Publicar(events.Evento{Nome: events.CatalogoAlterado, Canal: events.CanalLocal})
	return antes, depois, aplicado, nil
}

// SubstituirTudo troca o catálogo inteiro pelo snapshot remoto
// (last-writer-wins no nível da coleção), normalizando campos opcionais.
// Persiste localmente mas não reenvia ao remoto: o dado veio de lá.
func (c *Catalogo) SubstituirTudo(produtos []entity.Produto, canal string) {
	c.mu.Lock()
	c.produtos = normalizar(produtos)
	c.indice = nil
	c.salvarLocked()
	c.mu.Unlock()

	c.bus.Publicar(events.Evento{Nome: events.CatalogoAlterado, Canal: canal})
}

// ValorEmEstoque devolve Σ custo*estoque de todo o catálogo.
func (c *Catalogo) ValorEmEstoque() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, p := range c.produtos {
		total = total.Add(p.Custo.Mul(decimal.NewFromInt(int64(p.Estoque))))
	}
	return total
}

// UnidadesEmEstoque devolve a soma de unidades de todos os produtos.
func (c *Catalogo) UnidadesEmEstoque() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, p := range c.produtos {
		total += p.Estoque
	}
	return total
}

// Buscar filtra produtos por termo, sem distinção de acentos ou caixa, em
// nome, código, categoria, fornecedor, descrição e localização.
func (c *Catalogo) Buscar(termo string) []entity.Produto {
	chave := ChaveBusca(termo)
	if chave == "" {
		return c.Listar()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []entity.Produto
	for _, p := range c.produtos {
		campos := []string{p.Nome, p.Codigo, p.Categoria, p.Fornecedor, p.Descricao, p.Localizacao}
		for _, campo := range campos {
			if strings.Contains(ChaveBusca(campo), chave) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// buscarPosicao consulta o índice, reconstruindo-o se estragado ou ausente.
// Chamar com c.mu segurado.
func (c *Catalogo) buscarPosicao(id string) (int, bool) {
	if c.indice == nil {
		c.indice = make(map[string]int, len(c.produtos))
		for i, p := range c.produtos {
			c.indice[p.ID] = i
		}
	}
	pos, ok := c.indice[id]
	return pos, ok
}

// salvarLocked agenda a escrita coalescida do catálogo inteiro. Chamar com
// c.mu segurado.
func (c *Catalogo) salvarLocked() {
	dados, err := json.Marshal(c.produtos)
	if err != nil {
		c.log.Error().Err(err).Msg("serializar produtos")
		return
	}
	payload := string(dados)
	c.wb.Agendar(localstore.ChaveProdutos, func() error {
		return c.store.Set(localstore.ChaveProdutos, payload)
	}, 0)
}

var removerAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ChaveBusca normaliza um texto para comparação: minúsculas e sem acentos.
func ChaveBusca(s string) string {
	limpo, _, err := transform.String(removerAcentos, s)
	if err != nil {
		limpo = s
	}
	return strings.ToLower(strings.TrimSpace(limpo))
}

// normalizar preenche campos opcionais de registros antigos com zero values.
func normalizar(produtos []entity.Produto) []entity.Produto {
	out := make([]entity.Produto, 0, len(produtos))
	for _, p := range produtos {
		if p.Minimo < 0 {
			p.Minimo = 0
		}
		if p.Categoria == "" {
			p.Categoria = "outros"
		}
		out = append(out, p)
	}
	return out
}

// produtosDemo é o catálogo inicial de demonstração.
func produtosDemo() []entity.Produto {
	preco := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return []entity.Produto{
		{ID: "1", Nome: "Coca-Cola 350ml", Preco: preco("5.00"), Custo: preco("3.00"), Estoque: 50, Categoria: "bebidas"},
		{ID: "2", Nome: "Batata Frita", Preco: preco("2.50"), Custo: preco("1.50"), Estoque: 30, Categoria: "salgados"},
		{ID: "3", Nome: "Cigarro Marlboro", Preco: preco("12.50"), Custo: preco("8.00"), Estoque: 25, Categoria: "cigarros"},
		{ID: "4", Nome: "Isqueiro BIC", Preco: preco("3.50"), Custo: preco("2.00"), Estoque: 40, Categoria: "outros"},
		{ID: "5", Nome: "Água Mineral 500ml", Preco: preco("2.00"), Custo: preco("1.20"), Estoque: 60, Categoria: "bebidas"},
		{ID: "6", Nome: "Chocolate Bis", Preco: preco("4.50"), Custo: preco("2.80"), Estoque: 35, Categoria: "doces"},
	}
}
