package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

var _ Mirror = (*PostgresMirror)(nil)

// PostgresMirror espelha catálogo, movimentos e vendas em um PostgreSQL
// remoto. Produtos viram linhas com merge-upsert campo a campo; movimentos e
// vendas viram documentos JSONB imutáveis.
type PostgresMirror struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgres conecta e garante o esquema. Erro aqui significa que o espelho
// não ativa: o chamador degrada para Desativado e o sistema segue local.
func NewPostgres(ctx context.Context, databaseURL string, log *logger.Logger) (*PostgresMirror, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Codec NUMERIC/DECIMAL -> shopspring/decimal em todas as conexões.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("criar pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping espelho remoto: %w", err)
	}

	m := &PostgresMirror{pool: pool, log: log}
	if err := m.garantirEsquema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return m, nil
}

func (m *PostgresMirror) garantirEsquema(ctx context.Context) error {
	const esquema = `
		CREATE TABLE IF NOT EXISTS produtos (
			id            TEXT PRIMARY KEY,
			nome          TEXT NOT NULL DEFAULT '',
			preco         NUMERIC NOT NULL DEFAULT 0,
			custo         NUMERIC NOT NULL DEFAULT 0,
			estoque       BIGINT NOT NULL DEFAULT 0,
			minimo        BIGINT NOT NULL DEFAULT 0,
			codigo        TEXT NOT NULL DEFAULT '',
			categoria     TEXT NOT NULL DEFAULT '',
			fornecedor    TEXT NOT NULL DEFAULT '',
			descricao     TEXT NOT NULL DEFAULT '',
			localizacao   TEXT NOT NULL DEFAULT '',
			atualizado_em TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS movimentos (
			id        TEXT PRIMARY KEY,
			dados     JSONB NOT NULL,
			data      TIMESTAMPTZ NOT NULL,
			criado_em TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS vendas (
			id        TEXT PRIMARY KEY,
			dados     JSONB NOT NULL,
			data      TIMESTAMPTZ NOT NULL,
			criado_em TIMESTAMPTZ NOT NULL DEFAULT now()
		);`
	if _, err := m.pool.Exec(ctx, esquema); err != nil {
		return fmt.Errorf("garantir esquema remoto: %w", err)
	}
	return nil
}

// Habilitado sempre true para um espelho conectado.
func (m *PostgresMirror) Habilitado() bool { return true }

// Close fecha o pool.
func (m *PostgresMirror) Close() { m.pool.Close() }

// UpsertProdutos faz merge-upsert dos metadados do produto. Estoque fica de
// fora do UPDATE de propósito: esse campo só se move por AjustarEstoque.
func (m *PostgresMirror) UpsertProdutos(ctx context.Context, produtos []entity.Produto) {
	const query = `
		INSERT INTO produtos (id, nome, preco, custo, estoque, minimo, codigo, categoria, fornecedor, descricao, localizacao, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			nome = EXCLUDED.nome, preco = EXCLUDED.preco, custo = EXCLUDED.custo,
			minimo = EXCLUDED.minimo, codigo = EXCLUDED.codigo, categoria = EXCLUDED.categoria,
			fornecedor = EXCLUDED.fornecedor, descricao = EXCLUDED.descricao,
			localizacao = EXCLUDED.localizacao, atualizado_em = now()`
	for _, p := range produtos {
		_, err := m.pool.Exec(ctx, query,
			p.ID, p.Nome, p.Preco, p.Custo, p.Estoque, p.Minimo,
			p.Codigo, p.Categoria, p.Fornecedor, p.Descricao, p.Localizacao,
		)
		if err != nil {
			m.log.Error().Err(err).Str("produto", p.ID).Msg("falha upsert produto remoto")
		}
	}
}

// AjustarEstoque incrementa o estoque no servidor. Cria a linha quando o
// produto ainda não existe remotamente.
func (m *PostgresMirror) AjustarEstoque(ctx context.Context, produtoID string, delta int) {
	const query = `
		INSERT INTO produtos (id, estoque, atualizado_em) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			estoque = produtos.estoque + EXCLUDED.estoque, atualizado_em = now()`
	if _, err := m.pool.Exec(ctx, query, produtoID, delta); err != nil {
		m.log.Error().Err(err).Str("produto", produtoID).Int("delta", delta).Msg("falha ajuste de estoque remoto")
	}
}

// AddMovimento insere o movimento como documento novo.
func (m *PostgresMirror) AddMovimento(ctx context.Context, mov entity.Movimento) {
	dados, err := json.Marshal(mov)
	if err != nil {
		m.log.Error().Err(err).Str("movimento", mov.ID).Msg("serializar movimento")
		return
	}
	_, err = m.pool.Exec(ctx,
		`INSERT INTO movimentos (id, dados, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		mov.ID, dados, mov.Data)
	if err != nil {
		m.log.Error().Err(err).Str("movimento", mov.ID).Msg("falha add movimento remoto")
	}
}

// AddVenda insere a venda como documento novo.
func (m *PostgresMirror) AddVenda(ctx context.Context, venda entity.Venda) {
	dados, err := json.Marshal(venda)
	if err != nil {
		m.log.Error().Err(err).Str("venda", venda.ID).Msg("serializar venda")
		return
	}
	_, err = m.pool.Exec(ctx,
		`INSERT INTO vendas (id, dados, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		venda.ID, dados, venda.Data)
	if err != nil {
		m.log.Error().Err(err).Str("venda", venda.ID).Msg("falha add venda remota")
	}
}

// Puxar lê o snapshot remoto: catálogo completo, movimentos e vendas
// limitados aos 250 mais recentes (mesmo teto dos listeners originais).
func (m *PostgresMirror) Puxar(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := m.pool.Query(ctx, `
		SELECT id, nome, preco, custo, estoque, minimo, codigo, categoria, fornecedor, descricao, localizacao
		FROM produtos ORDER BY nome`)
	if err != nil {
		return nil, fmt.Errorf("puxar produtos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Produto
		if err := rows.Scan(&p.ID, &p.Nome, &p.Preco, &p.Custo, &p.Estoque, &p.Minimo,
			&p.Codigo, &p.Categoria, &p.Fornecedor, &p.Descricao, &p.Localizacao); err != nil {
			return nil, fmt.Errorf("scan produto: %w", err)
		}
		snap.Produtos = append(snap.Produtos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("puxar produtos: %w", err)
	}

	if err := puxarDocumentos(ctx, m.pool, "movimentos", &snap.Movimentos); err != nil {
		return nil, err
	}
	if err := puxarDocumentos(ctx, m.pool, "vendas", &snap.Vendas); err != nil {
		return nil, err
	}
	return snap, nil
}

// puxarDocumentos decodifica os documentos JSONB mais recentes de uma
// coleção na fatia destino.
func puxarDocumentos[T any](ctx context.Context, pool *pgxpool.Pool, tabela string, destino *[]T) error {
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT dados FROM %s ORDER BY data DESC LIMIT 250`, tabela))
	if err != nil {
		return fmt.Errorf("puxar %s: %w", tabela, err)
	}
	defer rows.Close()
	for rows.Next() {
		var dados []byte
		if err := rows.Scan(&dados); err != nil {
			return fmt.Errorf("scan %s: %w", tabela, err)
		}
		var doc T
		if err := json.Unmarshal(dados, &doc); err != nil {
			return fmt.Errorf("decodificar %s: %w", tabela, err)
		}
		*destino = append(*destino, doc)
	}
	return rows.Err()
}
