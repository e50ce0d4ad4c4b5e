package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/dto"
	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
)

// VendasHandler atende as rotas do caixa e do histórico de vendas.
type VendasHandler struct {
	coordenador *checkout.Coordenador
}

// NewVendasHandler constrói o handler.
func NewVendasHandler(coordenador *checkout.Coordenador) *VendasHandler {
	return &VendasHandler{coordenador: coordenador}
}

// Finalizar godoc
// @Summary      Finalizar venda
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FechamentoRequest  true  "Carrinho e pagamento"
// @Success      201   {object}  dto.VendaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/vendas [post]
func (h *VendasHandler) Finalizar(c *fiber.Ctx) error {
	var in dto.FechamentoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	fechamento := checkout.Fechamento{
		FormaPagamento: in.FormaPagamento,
		VendedorID:     in.VendedorID,
	}
	if in.ValorRecebido != nil {
		fechamento.ValorRecebido = *in.ValorRecebido
	}
	for _, item := range in.Itens {
		fechamento.Itens = append(fechamento.Itens, checkout.ItemCarrinho{
			ProdutoID:  item.ProdutoID,
			Quantidade: item.Quantidade,
		})
	}

	resultado, err := h.coordenador.FinalizarVenda(fechamento)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCarrinhoVazio):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CARRINHO_VAZIO", Message: "carrinho vazio"})
		case errors.Is(err, domain.ErrFormaPagamentoAusente):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FORMA_PAGAMENTO", Message: "forma de pagamento é obrigatória"})
		case errors.Is(err, domain.ErrValorInsuficiente):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALOR_INSUFICIENTE", Message: "valor recebido menor que o total"})
		case errors.Is(err, domain.ErrNaoEncontrado):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "PRODUTO_DESCONHECIDO", Message: "produto do carrinho não encontrado"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
	}

	out := dto.VendaResponse{Venda: resultado.Venda}
	if resultado.Venda.FormaPagamento == entity.PagamentoDinheiro {
		troco := resultado.Troco
		out.Troco = &troco
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar vendas
// @Tags         vendas
// @Produce      json
// @Param        inicio    query  string  false  "Data inicial (2006-01-02)"
// @Param        fim       query  string  false  "Data final, inclusiva (2006-01-02)"
// @Param        vendedor  query  string  false  "Filtro por vendedor"
// @Success      200  {array}  entity.Venda
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/vendas [get]
func (h *VendasHandler) List(c *fiber.Ctx) error {
	inicio, err := dataQuery(c, "inicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "inicio inválido"})
	}
	fim, err := dataQuery(c, "fim")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fim inválido"})
	}
	return c.JSON(h.coordenador.Vendas(inicio, fim, c.Query("vendedor")))
}

// TotalDia godoc
// @Summary      Receita do dia corrente
// @Tags         vendas
// @Produce      json
// @Success      200  {object}  map[string]decimal.Decimal
// @Router       /api/vendas/dia [get]
func (h *VendasHandler) TotalDia(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"total": h.coordenador.TotalDoDia()})
}

// dataQuery interpreta um parâmetro de data ISO; ausência devolve nil.
func dataQuery(c *fiber.Ctx, nome string) (*time.Time, error) {
	raw := c.Query(nome)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
