package tabsync

import "sync"

// Anuncio é a mensagem difundida entre instâncias irmãs: o nome do evento
// que mudou (ledger, catálogo ou vendas).
type Anuncio struct {
	Nome string
}

// Hub é o canal de difusão entre instâncias que compartilham o mesmo store.
// Cada instância se registra e recebe os anúncios das demais; o remetente
// nunca recebe o próprio anúncio.
type Hub struct {
	mu      sync.Mutex
	proximo int
	membros map[int]func(Anuncio)
}

// NewHub cria um hub vazio.
func NewHub() *Hub {
	return &Hub{membros: make(map[int]func(Anuncio))}
}

// Entrar registra um membro e devolve o id dele junto com a função de saída.
func (h *Hub) Entrar(fn func(Anuncio)) (id int, sair func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id = h.proximo
	h.proximo++
	h.membros[id] = fn
	return id, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.membros, id)
	}
}

// Difundir entrega o anúncio a todos os membros exceto o remetente.
func (h *Hub) Difundir(remetente int, a Anuncio) {
	h.mu.Lock()
	destinos := make([]func(Anuncio), 0, len(h.membros))
	for id, fn := range h.membros {
		if id != remetente {
			destinos = append(destinos, fn)
		}
	}
	h.mu.Unlock()
	for _, fn := range destinos {
		fn(a)
	}
}
