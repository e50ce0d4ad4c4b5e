package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lucasvmx/tabacaria-pos/internal/application/catalog"
	"github.com/lucasvmx/tabacaria-pos/internal/application/checkout"
	"github.com/lucasvmx/tabacaria-pos/internal/application/espelho"
	"github.com/lucasvmx/tabacaria-pos/internal/application/inventory"
	"github.com/lucasvmx/tabacaria-pos/internal/application/reports"
	"github.com/lucasvmx/tabacaria-pos/internal/application/vendors"
	"github.com/lucasvmx/tabacaria-pos/internal/events"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/remote"
	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/writeback"
	httpRouter "github.com/lucasvmx/tabacaria-pos/internal/interfaces/http"
	"github.com/lucasvmx/tabacaria-pos/internal/pix"
	"github.com/lucasvmx/tabacaria-pos/internal/tabsync"
	"github.com/lucasvmx/tabacaria-pos/pkg/config"
	"github.com/lucasvmx/tabacaria-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()

	// Store local: SQLite por padrão; em falha opera efêmero em memória.
	var base localstore.Store
	sqlite, err := localstore.NewSQLite(cfg.Store.Path)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Store.Path).Msg("abrir store local, operando em memória")
		base = localstore.NewMemory()
	} else {
		base = sqlite
		defer sqlite.Close()
	}
	observado := localstore.Observar(base)

	// Espelho remoto opcional: sem URL (ou com falha de conexão) o sistema
	// degrada para operação puramente local.
	var remoto remote.Mirror = remote.Desativado{}
	if cfg.Sync.DatabaseURL != "" {
		pg, err := remote.NewPostgres(ctx, cfg.Sync.DatabaseURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("espelho remoto indisponível, operando local")
		} else {
			remoto = pg
			defer pg.Close()
		}
	}

	wb := writeback.New(cfg.Writeback.Delay, log)
	bus := events.New()

	catalogo := catalog.New(observado, wb, remoto, bus, log)
	ledger := inventory.NewLedger(observado, wb, remoto, bus, log)
	movimentacao := inventory.NewMovimentacao(catalogo, ledger, log)
	vendedores := vendors.New(observado, log)
	coordenador := checkout.New(catalogo, ledger, vendedores, observado, wb, remoto, bus, log)
	relatorios := reports.New(catalogo, ledger, coordenador)
	pixServico := pix.NewServico(observado, pix.Config{
		Chave:  cfg.Pix.Chave,
		Nome:   cfg.Pix.Nome,
		Cidade: cfg.Pix.Cidade,
		Info:   cfg.Pix.Info,
		Banco:  cfg.Pix.Banco,
	}, log)

	opcoes := tabsync.OpcoesPadrao()
	opcoes.PollPeriodo = cfg.Sync.DriftPoll
	sincronia := tabsync.New(tabsync.NewHub(), catalogo, ledger, coordenador, wb, observado, bus, log, opcoes)
	defer sincronia.Fechar()

	sincronizador := espelho.New(remoto, catalogo, ledger, coordenador, cfg.Sync.PullInterval, log)
	sincronizador.Iniciar(ctx)
	defer sincronizador.Parar()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tabacaria POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "espelho": remoto.Habilitado()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalogo:     catalogo,
		Ledger:       ledger,
		Movimentacao: movimentacao,
		Coordenador:  coordenador,
		Vendedores:   vendedores,
		Relatorios:   relatorios,
		Pix:          pixServico,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	// Escritas coalescidas pendentes são drenadas antes de sair.
	wb.FlushAll()

	log.Info().Msg("aplicação parada")
}
