package events

import "sync"

// Nomes de evento publicados pelo núcleo.
const (
	LedgerAlterado   = "ledger"
	CatalogoAlterado = "catalogo"
	VendasAlteradas  = "vendas"
)

// Canais que alimentam o bus. Cada canal é um produtor independente e pode
// ser desligado isoladamente (útil em testes).
const (
	CanalLocal     = "local"     // mutação feita nesta própria aba
	CanalBroadcast = "broadcast" // difusão entre abas irmãs
	CanalStore     = "store"     // notificação nativa de mudança do store
	CanalPoll      = "poll"      // poll de detecção de deriva
	CanalRemoto    = "remoto"    // snapshot aplicado pelo pull do espelho
)

// Evento descreve uma mudança no núcleo.
type Evento struct {
	Nome  string // LedgerAlterado, CatalogoAlterado, VendasAlteradas
	Canal string // por onde a mudança chegou
}

// Bus é o ponto único de assinatura para "ledger/catálogo mudou". Os três
// canais de propagação (broadcast, store, poll) publicam aqui, junto com as
// mutações locais; os colaboradores de UI assinam uma vez só.
type Bus struct {
	mu         sync.RWMutex
	assinantes []func(Evento)
}

// New cria um bus vazio.
func New() *Bus {
	return &Bus{}
}

// Assinar registra um assinante e devolve a função de cancelamento.
func (b *Bus) Assinar(fn func(Evento)) func() {
	b.mu.Lock()
	b.assinantes = append(b.assinantes, fn)
	idx := len(b.assinantes) - 1
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.assinantes) {
			b.assinantes[idx] = nil
		}
	}
}

// Publicar entrega o evento a todos os assinantes, sincronamente, na ordem
// de assinatura. Os handlers devem ser rápidos: rodam no caminho da mutação.
func (b *Bus) Publicar(ev Evento) {
	b.mu.RLock()
	assinantes := make([]func(Evento), len(b.assinantes))
	copy(assinantes, b.assinantes)
	b.mu.RUnlock()
	for _, fn := range assinantes {
		if fn != nil {
			fn(ev)
		}
	}
}
