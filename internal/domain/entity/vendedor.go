package entity

// Status possíveis de um vendedor.
const (
	VendedorAtivo   = "ativo"
	VendedorFerias  = "ferias"
	VendedorInativo = "inativo"
)

// StatusVendedorValido diz se o status é um dos aceitos.
func StatusVendedorValido(s string) bool {
	switch s {
	case VendedorAtivo, VendedorFerias, VendedorInativo:
		return true
	}
	return false
}

// Vendedor é um registro independente, referenciado por id em vendas e
// movimentos. Remover um vendedor não reescreve o histórico: referências
// antigas ficam penduradas de propósito (histórico append-only).
type Vendedor struct {
	ID      string `json:"id"`
	Nome    string `json:"nome"`
	Contato string `json:"contato,omitempty"`
	Status  string `json:"status"`
}

// RefVendedor é o snapshot de vendedor embutido em vendas e movimentos.
// Registros antigos podem ter ids que não conferem mais; a correspondência
// por nome cobre esse caso.
type RefVendedor struct {
	ID      string `json:"id"`
	Nome    string `json:"nome"`
	Contato string `json:"contato,omitempty"`
}
