package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
)

// MovimentosHandler atende as rotas do razão de movimentos.
type MovimentosHandler struct {
	ledger       *inventory.Ledger
	movimentacao *inventory.Movimentacao
}

// NewMovimentosHandler constrói o handler.
func NewMovimentosHandler(ledger *inventory.Ledger, movimentacao *inventory.Movimentacao) *MovimentosHandler {
	return &MovimentosHandler{ledger: ledger, movimentacao: movimentacao}
}

// List godoc
// @Summary      Listar movimentos (mais novo primeiro)
// @Tags         movimentos
// @Produce      json
// @Param        dias  query  int  false  "Janela em dias (0 = tudo)"
// @Success      200  {array}  entity.Movimento
// @Router       /api/movimentos [get]
func (h *MovimentosHandler) List(c *fiber.Ctx) error {
	if dias := c.QueryInt("dias", 0); dias > 0 {
		return c.JSON(h.ledger.UltimosDias(dias))
	}
	return c.JSON(h.ledger.Consultar(nil))
}

// EntradaRapida godoc
// @Summary      Registrar entrada ou saída manual
// @Tags         movimentos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntradaRapidaRequest  true  "Movimento manual"
// @Success      201   {object}  entity.Movimento
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movimentos [post]
func (h *MovimentosHandler) EntradaRapida(c *fiber.Ctx) error {
	var in dto.EntradaRapidaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	mov, err := h.movimentacao.EntradaRapida(in.ProdutoID, in.Tipo, in.Quantidade, in.Observacao)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNaoEncontrado):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
		case errors.Is(err, domain.ErrEstoqueInsuficiente):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ESTOQUE_INSUFICIENTE", Message: "estoque insuficiente"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}
