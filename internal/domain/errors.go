package domain

import "errors"

// Erros de domínio (sem dependências externas). Nenhum deles é fatal ao
// processo: falhas de persistência e de sync degradam para "não persistiu/
// propagou por completo" e são apenas registradas em log.
var (
	ErrNaoEncontrado         = errors.New("recurso não encontrado")
	ErrEntradaInvalida       = errors.New("entrada inválida")
	ErrCarrinhoVazio         = errors.New("carrinho vazio")
	ErrFormaPagamentoAusente = errors.New("forma de pagamento não selecionada")
	ErrValorInsuficiente     = errors.New("valor recebido insuficiente")
	ErrEstoqueInsuficiente   = errors.New("estoque insuficiente")
)
