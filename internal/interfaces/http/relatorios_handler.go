package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/application/reports"
)

// RelatoriosHandler atende as rotas de relatórios e indicadores.
type RelatoriosHandler struct {
	relatorios *reports.Relatorios
}

// NewRelatoriosHandler constrói o handler.
func NewRelatoriosHandler(relatorios *reports.Relatorios) *RelatoriosHandler {
	return &RelatoriosHandler{relatorios: relatorios}
}

// Resumo godoc
// @Summary      Resumo financeiro do período
// @Tags         relatorios
// @Produce      json
// @Param        inicio    query  string  false  "Data inicial (2006-01-02)"
// @Param        fim       query  string  false  "Data final, inclusiva (2006-01-02)"
// @Param        vendedor  query  string  false  "Filtro por vendedor"
// @Success      200  {object}  reports.Resumo
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/relatorios/resumo [get]
func (h *RelatoriosHandler) Resumo(c *fiber.Ctx) error {
	inicio, err := dataQuery(c, "inicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "inicio inválido"})
	}
	fim, err := dataQuery(c, "fim")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fim inválido"})
	}
	return c.JSON(h.relatorios.ResumoFinanceiro(inicio, fim, c.Query("vendedor")))
}

// VendasPorDia godoc
// @Summary      Vendas agregadas por dia
// @Tags         relatorios
// @Produce      json
// @Param        inicio  query  string  false  "Data inicial (2006-01-02)"
// @Param        fim     query  string  false  "Data final, inclusiva (2006-01-02)"
// @Success      200  {array}  reports.DiaResumo
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/relatorios/vendas-por-dia [get]
func (h *RelatoriosHandler) VendasPorDia(c *fiber.Ctx) error {
	inicio, err := dataQuery(c, "inicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "inicio inválido"})
	}
	fim, err := dataQuery(c, "fim")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fim inválido"})
	}
	return c.JSON(h.relatorios.VendasPorDia(inicio, fim))
}

// FormasPagamento godoc
// @Summary      Totais por forma de pagamento
// @Tags         relatorios
// @Produce      json
// @Success      200  {object}  map[string]reports.FormaPagamento
// @Router       /api/relatorios/formas-pagamento [get]
func (h *RelatoriosHandler) FormasPagamento(c *fiber.Ctx) error {
	return c.JSON(h.relatorios.FormasPagamento())
}

// Estoque godoc
// @Summary      Indicadores do estoque
// @Tags         relatorios
// @Produce      json
// @Success      200  {object}  reports.Estoque
// @Router       /api/relatorios/estoque [get]
func (h *RelatoriosHandler) Estoque(c *fiber.Ctx) error {
	return c.JSON(h.relatorios.ResumoEstoque())
}
