package vendors

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lucasvmx/tabacaria-pos/internal/domain"
	"github.com/lucasvmx/tabacaria-pos/internal/domain/entity"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Registro mantém a lista de vendedores e o vendedor selecionado no caixa.
// Lista própria, persistida direto (sem coalescência: mutações de vendedor
// são raras). Excluir um vendedor deixa referências históricas penduradas
// por decisão de projeto.
type Registro struct {
	mu          sync.Mutex
	vendedores  []entity.Vendedor
	selecionado string

	store localstore.Store
	log   *logger.Logger
}

// New hidrata o registro a partir do store.
func New(store localstore.Store, log *logger.Logger) *Registro {
	r := &Registro{store: store, log: log}
	r.Recarregar()
	return r
}

// Recarregar relê vendedores e seleção do store.
func (r *Registro) Recarregar() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if raw, ok, err := r.store.Get(localstore.ChaveVendedores); err != nil {
		r.log.Error().Err(err).Msg("carregar vendedores")
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &r.vendedores); err != nil {
			r.log.Error().Err(err).Msg("decodificar vendedores")
		}
	}
	if id, ok, _ := r.store.Get(localstore.ChaveVendedorSelecionado); ok {
		r.selecionado = id
	}
}

// Cadastrar cria um vendedor e o seleciona automaticamente.
func (r *Registro) Cadastrar(nome, contato, status string) (entity.Vendedor, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return entity.Vendedor{}, domain.ErrEntradaInvalida
	}
	if status == "" {
		status = entity.VendedorAtivo
	}
	if !entity.StatusVendedorValido(status) {
		return entity.Vendedor{}, domain.ErrEntradaInvalida
	}
	v := entity.Vendedor{
		ID:      uuid.New().String(),
		Nome:    nome,
		Contato: strings.TrimSpace(contato),
		Status:  status,
	}
	r.mu.Lock()
	r.vendedores = append(r.vendedores, v)
	r.selecionado = v.ID
	r.salvarLocked()
	r.salvarSelecaoLocked()
	r.mu.Unlock()
	return v, nil
}

// Atualizar edita nome, contato e status de um vendedor.
func (r *Registro) Atualizar(id, nome, contato, status string) (entity.Vendedor, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" || !entity.StatusVendedorValido(status) {
		return entity.Vendedor{}, domain.ErrEntradaInvalida
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.vendedores {
		if r.vendedores[i].ID == id {
			r.vendedores[i].Nome = nome
			r.vendedores[i].Contato = strings.TrimSpace(contato)
			r.vendedores[i].Status = status
			v := r.vendedores[i]
			r.salvarLocked()
			return v, nil
		}
	}
	return entity.Vendedor{}, domain.ErrNaoEncontrado
}

// Remover exclui o vendedor. A seleção é limpa se apontava para ele; o
// histórico de vendas e movimentos não é reescrito.
func (r *Registro) Remover(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtrado := r.vendedores[:0]
	for _, v := range r.vendedores {
		if v.ID != id {
			filtrado = append(filtrado, v)
		}
	}
	r.vendedores = filtrado
	if r.selecionado == id {
		r.selecionado = ""
		r.salvarSelecaoLocked()
	}
	r.salvarLocked()
}

// Listar devolve os vendedores, opcionalmente filtrados por status.
func (r *Registro) Listar(status string) []entity.Vendedor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Vendedor, 0, len(r.vendedores))
	for _, v := range r.vendedores {
		if status == "" || status == "todos" || v.Status == status {
			out = append(out, v)
		}
	}
	return out
}

// Selecionar marca o vendedor corrente do caixa (id vazio limpa a seleção).
func (r *Registro) Selecionar(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		achou := false
		for _, v := range r.vendedores {
			if v.ID == id {
				achou = true
				break
			}
		}
		if !achou {
			return domain.ErrNaoEncontrado
		}
	}
	r.selecionado = id
	r.salvarSelecaoLocked()
	return nil
}

// Selecionado devolve o vendedor corrente, ou nil se nenhum.
func (r *Registro) Selecionado() *entity.Vendedor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selecionado == "" {
		return nil
	}
	for _, v := range r.vendedores {
		if v.ID == r.selecionado {
			c := v
			return &c
		}
	}
	return nil
}

// Corresponde verifica se a referência de vendedor de um registro histórico
// casa com o filtro. Primeiro por id; registros antigos com id trocado caem
// no fallback por nome.
func (r *Registro) Corresponde(ref *entity.RefVendedor, filtroID string) bool {
	if ref == nil || filtroID == "" {
		return false
	}
	if ref.ID == filtroID {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vendedores {
		if v.ID == filtroID {
			return normalizarNome(ref.Nome) == normalizarNome(v.Nome)
		}
	}
	return false
}

func normalizarNome(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// salvarSelecaoLocked persiste a seleção corrente. Chamar com r.mu segurado.
func (r *Registro) salvarSelecaoLocked() {
	if err := r.store.Set(localstore.ChaveVendedorSelecionado, r.selecionado); err != nil {
		r.log.Error().Err(err).Msg("salvar vendedor selecionado")
	}
}

// salvarLocked persiste a lista direto no store. Chamar com r.mu segurado.
func (r *Registro) salvarLocked() {
	dados, err := json.Marshal(r.vendedores)
	if err != nil {
		r.log.Error().Err(err).Msg("serializar vendedores")
		return
	}
	if err := r.store.Set(localstore.ChaveVendedores, string(dados)); err != nil {
		r.log.Error().Err(err).Msg("salvar vendedores")
	}
}
