package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/application/reports"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/pix"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	Catalogo     *catalog.Catalogo
	Ledger       *inventory.Ledger
	Movimentacao *inventory.Movimentacao
	Coordenador  *checkout.Coordenador
	Vendedores   *vendors.Registro
	Relatorios   *reports.Relatorios
	Pix          *pix.Servico
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	produtos := api.Group("/produtos")
	produtosHandler := NewProdutosHandler(deps.Catalogo, deps.Movimentacao)
	produtos.Get("/", produtosHandler.List)
	produtos.Post("/", produtosHandler.Upsert)
	produtos.Get("/:id", produtosHandler.GetByID)
	produtos.Put("/:id", produtosHandler.Update)
	produtos.Delete("/:id", produtosHandler.Delete)
	produtos.Post("/:id/ajuste", produtosHandler.Ajuste)

	// Razão de movimentos
	movimentos := api.Group("/movimentos")
	movimentosHandler := NewMovimentosHandler(deps.Ledger, deps.Movimentacao)
	movimentos.Get("/", movimentosHandler.List)
	movimentos.Post("/", movimentosHandler.EntradaRapida)

	// Caixa e histórico
	vendas := api.Group("/vendas")
	vendasHandler := NewVendasHandler(deps.Coordenador)
	vendas.Post("/", vendasHandler.Finalizar)
	vendas.Get("/", vendasHandler.List)
	vendas.Get("/dia", vendasHandler.TotalDia)

	// Vendedores
	vendedores := api.Group("/vendedores")
	vendedoresHandler := NewVendedoresHandler(deps.Vendedores)
	vendedores.Get("/", vendedoresHandler.List)
	vendedores.Post("/", vendedoresHandler.Create)
	vendedores.Get("/selecionado", vendedoresHandler.Selecionado)
	vendedores.Put("/selecionado", vendedoresHandler.Selecionar)
	vendedores.Put("/:id", vendedoresHandler.Update)
	vendedores.Delete("/:id", vendedoresHandler.Delete)

	// Relatórios
	relatorios := api.Group("/relatorios")
	relatoriosHandler := NewRelatoriosHandler(deps.Relatorios)
	relatorios.Get("/resumo", relatoriosHandler.Resumo)
	relatorios.Get("/vendas-por-dia", relatoriosHandler.VendasPorDia)
	relatorios.Get("/formas-pagamento", relatoriosHandler.FormasPagamento)
	relatorios.Get("/estoque", relatoriosHandler.Estoque)

	// Pix
	pixGroup := api.Group("/pix")
	pixHandler := NewPixHandler(deps.Pix)
	pixGroup.Post("/cobranca", pixHandler.Cobrar)
	pixGroup.Get("/config", pixHandler.Config)
	pixGroup.Put("/config", pixHandler.SalvarConfig)
}
