package tabsync

import (
	"sync"
	"time"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

// Opcoes liga e desliga cada produtor de consistência isoladamente. Os três
// são redundantes de propósito: qualquer um sozinho mantém as instâncias
// convergentes, os outros dois cobrem ambientes onde ele falha.
type Opcoes struct {
	Broadcast   bool
	Store       bool
	Poll        bool
	PollPeriodo time.Duration
}

// OpcoesPadrao habilita os três produtores com poll de 2s.
func OpcoesPadrao() Opcoes {
	return Opcoes{Broadcast: true, Store: true, Poll: true, PollPeriodo: 2 * time.Second}
}

// Sincronia mantém uma instância convergente com as irmãs que compartilham o
// mesmo store. Três produtores alimentam o mesmo bus: difusão explícita via
// hub, notificação de mudança do store e um poll de deriva sobre o resumo do
// razão. Na detecção a instância re-puxa o estado inteiro do store; não há
// merge.
type Sincronia struct {
	catalogo    *catalog.Catalogo
	ledger      *inventory.Ledger
	coordenador *checkout.Coordenador
	wb          *writeback.Coalescer
	bus         *events.Bus
	log         *logger.Logger

	hub   *Hub
	hubID int
	sair  func()

	parar     chan struct{}
	pararUma  sync.Once
	cancelBus func()
}

// New liga a sincronização. O hub pode ser nil quando a difusão está
// desabilitada.
func New(hub *Hub, catalogo *catalog.Catalogo, ledger *inventory.Ledger, coordenador *checkout.Coordenador, wb *writeback.Coalescer, observado *localstore.Observado, bus *events.Bus, log *logger.Logger, op Opcoes) *Sincronia {
	s := &Sincronia{
		catalogo:    catalogo,
		ledger:      ledger,
		coordenador: coordenador,
		wb:          wb,
		bus:         bus,
		log:         log,
		hub:         hub,
		parar:       make(chan struct{}),
	}

	if op.Broadcast && hub != nil {
		s.hubID, s.sair = hub.Entrar(func(a Anuncio) {
			s.aplicar(a.Nome, events.CanalBroadcast)
		})
		// Mutações locais são anunciadas às irmãs.
		s.cancelBus = bus.Assinar(func(ev events.Evento) {
			if ev.Canal == events.CanalLocal {
				hub.Difundir(s.hubID, Anuncio{Nome: ev.Nome})
			}
		})
	}

	if op.Store && observado != nil {
		// Ao contrário da difusão, o escritor também recebe a própria
		// notificação; o re-pull resultante é idempotente.
		observado.AoMudar(func(chave string) {
			if nome, ok := eventoDaChave(chave); ok {
				s.aplicar(nome, events.CanalStore)
			}
		})
	}

	if op.Poll {
		periodo := op.PollPeriodo
		if periodo <= 0 {
			periodo = 2 * time.Second
		}
		go s.pollDeriva(periodo)
	}
	return s
}

// Fechar encerra o poll e sai do hub.
func (s *Sincronia) Fechar() {
	s.pararUma.Do(func() { close(s.parar) })
	if s.sair != nil {
		s.sair()
	}
	if s.cancelBus != nil {
		s.cancelBus()
	}
}

// aplicar re-puxa a coleção mudada e republica o evento no canal de origem.
// Com escrita pendente para a chave, a memória local está à frente do store;
// re-puxar agora reverteria uma mutação ainda não descarregada, então o
// sinal é ignorado (o flush da própria escrita notifica de novo).
func (s *Sincronia) aplicar(nome, canal string) {
	var chave string
	var recarregar func()
	switch nome {
	case events.LedgerAlterado:
		chave, recarregar = localstore.ChaveMovimentos, s.ledger.Recarregar
	case events.CatalogoAlterado:
		chave, recarregar = localstore.ChaveProdutos, s.catalogo.Recarregar
	case events.VendasAlteradas:
		chave, recarregar = localstore.ChaveVendas, s.coordenador.Recarregar
	default:
		return
	}
	if s.wb.Pendente(chave) {
		return
	}
	recarregar()
	s.bus.Publicar(events.Evento{Nome: nome, Canal: canal})
}

// pollDeriva compara periodicamente o resumo persistido do razão com o em
// memória; divergência indica que outra instância escreveu sem que os canais
// principais entregassem. A comparação lê só o store: o estado em memória é
// substituído apenas quando há deriva real e nenhuma escrita local pendente.
func (s *Sincronia) pollDeriva(periodo time.Duration) {
	tick := time.NewTicker(periodo)
	defer tick.Stop()
	for {
		select {
		case <-s.parar:
			return
		case <-tick.C:
			if s.wb.Pendente(localstore.ChaveMovimentos) {
				continue
			}
			persistido := s.ledger.HashPersistido()
			if persistido == "" || persistido == s.ledger.HashDeriva() {
				continue
			}
			s.ledger.Recarregar()
			s.log.Debug().Str("resumo", persistido).Msg("deriva de razão detectada")
			s.bus.Publicar(events.Evento{Nome: events.LedgerAlterado, Canal: events.CanalPoll})
		}
	}
}

func eventoDaChave(chave string) (string, bool) {
	switch chave {
	case localstore.ChaveProdutos:
		return events.CatalogoAlterado, true
	case localstore.ChaveMovimentos:
		return events.LedgerAlterado, true
	case localstore.ChaveVendas:
		return events.VendasAlteradas, true
	}
	return "", false
}
