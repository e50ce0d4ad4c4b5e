package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/pix"
)

// PixHandler atende as rotas de cobrança e configuração pix.
type PixHandler struct {
	servico *pix.Servico
}

// NewPixHandler constrói o handler.
func NewPixHandler(servico *pix.Servico) *PixHandler {
	return &PixHandler{servico: servico}
}

// Cobrar godoc
// @Summary      Gerar código pix copia-e-cola
// @Tags         pix
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PixCobrancaRequest  true  "Valor e identificação da cobrança"
// @Success      200   {object}  dto.PixPayloadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pix/cobranca [post]
func (h *PixHandler) Cobrar(c *fiber.Ctx) error {
	var in dto.PixCobrancaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	payload, err := h.servico.Cobrar(pix.Cobranca{Valor: in.Valor, TxID: in.TxID, Info: in.Info})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.JSON(dto.PixPayloadResponse{Payload: payload})
}

// Config godoc
// @Summary      Configuração pix corrente
// @Tags         pix
// @Produce      json
// @Success      200  {object}  pix.Config
// @Router       /api/pix/config [get]
func (h *PixHandler) Config(c *fiber.Ctx) error {
	return c.JSON(h.servico.Config())
}

// SalvarConfig godoc
// @Summary      Salvar configuração pix
// @Tags         pix
// @Accept       json
// @Produce      json
// @Param        body  body  pix.Config  true  "Dados do recebedor"
// @Success      200   {object}  pix.Config
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pix/config [put]
func (h *PixHandler) SalvarConfig(c *fiber.Ctx) error {
	var in pix.Config
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	return c.JSON(h.servico.Salvar(in))
}
