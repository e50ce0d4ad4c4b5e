package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
)

// ProdutosHandler atende as rotas do catálogo de produtos.
type ProdutosHandler struct {
	catalogo     *catalog.Catalogo
	movimentacao *inventory.Movimentacao
}

// NewProdutosHandler constrói o handler.
func NewProdutosHandler(catalogo *catalog.Catalogo, movimentacao *inventory.Movimentacao) *ProdutosHandler {
	return &ProdutosHandler{catalogo: catalogo, movimentacao: movimentacao}
}

// List godoc
// @Summary      Listar produtos
// @Tags         produtos
// @Produce      json
// @Param        busca  query  string  false  "Filtro por nome, código, categoria ou fornecedor"
// @Success      200  {array}  entity.Produto
// @Router       /api/produtos [get]
func (h *ProdutosHandler) List(c *fiber.Ctx) error {
	if busca := strings.TrimSpace(c.Query("busca")); busca != "" {
		return c.JSON(h.catalogo.Buscar(busca))
	}
	return c.JSON(h.catalogo.Listar())
}

// GetByID godoc
// @Summary      Obter produto por ID
// @Tags         produtos
// @Produce      json
// @Param        id  path  string  true  "ID do produto"
// @Success      200  {object}  entity.Produto
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [get]
func (h *ProdutosHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.catalogo.BuscarPorID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
	}
	return c.JSON(p)
}

// Upsert godoc
// @Summary      Criar ou atualizar produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProdutoRequest  true  "Dados do produto"
// @Success      200   {object}  entity.Produto
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/produtos [post]
func (h *ProdutosHandler) Upsert(c *fiber.Ctx) error {
	var in dto.ProdutoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if strings.TrimSpace(in.Nome) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nome é obrigatório"})
	}
	return c.JSON(h.catalogo.Upsert(in.Entidade()))
}

// Update godoc
// @Summary      Atualizar produto existente
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do produto"
// @Param        body  body  dto.ProdutoRequest  true  "Dados do produto"
// @Success      200   {object}  entity.Produto
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [put]
func (h *ProdutosHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.catalogo.BuscarPorID(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
	}
	var in dto.ProdutoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	in.ID = id
	return c.JSON(h.catalogo.Upsert(in.Entidade()))
}

// Delete godoc
// @Summary      Excluir produto
// @Tags         produtos
// @Param        id  path  string  true  "ID do produto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [delete]
func (h *ProdutosHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalogo.Remover(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Ajuste godoc
// @Summary      Ajustar estoque (delta assinado)
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do produto"
// @Param        body  body  dto.AjusteRequest  true  "Delta de estoque"
// @Success      200   {object}  entity.Movimento
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/produtos/{id}/ajuste [post]
func (h *ProdutosHandler) Ajuste(c *fiber.Ctx) error {
	var in dto.AjusteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	mov, err := h.movimentacao.Ajustar(c.Params("id"), in.Delta)
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
	return c.JSON(mov)
}
