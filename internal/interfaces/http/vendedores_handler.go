package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
)

// VendedoresHandler atende as rotas de vendedores e da seleção do caixa.
type VendedoresHandler struct {
	registro *vendors.Registro
}

// NewVendedoresHandler constrói o handler.
func NewVendedoresHandler(registro *vendors.Registro) *VendedoresHandler {
	return &VendedoresHandler{registro: registro}
}

// List godoc
// @Summary      Listar vendedores
// @Tags         vendedores
// @Produce      json
// @Param        status  query  string  false  "ativo | ferias | inativo | todos"
// @Success      200  {array}  entity.Vendedor
// @Router       /api/vendedores [get]
func (h *VendedoresHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.registro.Listar(c.Query("status")))
}

// Create godoc
// @Summary      Cadastrar vendedor
// @Tags         vendedores
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VendedorRequest  true  "Dados do vendedor"
// @Success      201   {object}  entity.Vendedor
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/vendedores [post]
func (h *VendedoresHandler) Create(c *fiber.Ctx) error {
	var in dto.VendedorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	v, err := h.registro.Cadastrar(in.Nome, in.Contato, in.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nome e status válidos são obrigatórios"})
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// Update godoc
// @Summary      Atualizar vendedor
// @Tags         vendedores
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do vendedor"
// @Param        body  body  dto.VendedorRequest  true  "Dados do vendedor"
// @Success      200   {object}  entity.Vendedor
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vendedores/{id} [put]
func (h *VendedoresHandler) Update(c *fiber.Ctx) error {
	var in dto.VendedorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	v, err := h.registro.Atualizar(c.Params("id"), in.Nome, in.Contato, in.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNaoEncontrado) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "vendedor não encontrado"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nome e status válidos são obrigatórios"})
	}
	return c.JSON(v)
}

// Delete godoc
// @Summary      Excluir vendedor (histórico preservado)
// @Tags         vendedores
// @Param        id  path  string  true  "ID do vendedor"
// @Success      204
// @Router       /api/vendedores/{id} [delete]
func (h *VendedoresHandler) Delete(c *fiber.Ctx) error {
	h.registro.Remover(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Selecionado godoc
// @Summary      Vendedor selecionado no caixa
// @Tags         vendedores
// @Produce      json
// @Success      200  {object}  entity.Vendedor
// @Success      204
// @Router       /api/vendedores/selecionado [get]
func (h *VendedoresHandler) Selecionado(c *fiber.Ctx) error {
	v := h.registro.Selecionado()
	if v == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(v)
}

// Selecionar godoc
// @Summary      Selecionar vendedor do caixa (id vazio limpa)
// @Tags         vendedores
// @Accept       json
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendedores/selecionado [put]
func (h *VendedoresHandler) Selecionar(c *fiber.Ctx) error {
	var in dto.SelecaoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.registro.Selecionar(in.ID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "vendedor não encontrado"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
