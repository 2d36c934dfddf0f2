package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ink_goban/internal/adapters"
	"ink_goban/internal/bootstrap"
	atariDelivery "ink_goban/internal/delivery/atari"
	dragonDelivery "ink_goban/internal/delivery/dragon"
	gameDelivery "ink_goban/internal/delivery/game"
	machineDelivery "ink_goban/internal/delivery/machine"
	recordDelivery "ink_goban/internal/delivery/record"
	ownMiddleware "ink_goban/internal/middleware"
	"ink_goban/internal/repository"
	atariUC "ink_goban/internal/usecase/atari"
	dragonUC "ink_goban/internal/usecase/dragon"
	gameUC "ink_goban/internal/usecase/game"
	machineUC "ink_goban/internal/usecase/machine"
	recordUC "ink_goban/internal/usecase/record"
)

type mainDeliveryHandler struct {
	record  *recordDelivery.RecordHandler
	atari   *atariDelivery.AtariHandler
	machine *machineDelivery.MachineHandler
	dragon  *dragonDelivery.DragonHandler
	game    *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	engine, err := repository.NewEngineClient(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось запустить го-движок", zap.Error(err))
	}
	defer engine.Close()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, engine, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	port := ":" + cfg.ServerPort
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/record/parse", h.record.HandleParse)

	r.Post("/atari/new", h.atari.HandleNew)
	r.Post("/atari/move", h.atari.HandleMove)
	r.Post("/atari/undo", h.atari.HandleUndo)
	r.Get("/atari/state", h.atari.HandleState)

	r.Post("/machine/new", h.machine.HandleNew)
	r.Post("/machine/move", h.machine.HandleMove)
	r.Get("/machine/state", h.machine.HandleState)

	r.Post("/dragon/login", h.dragon.HandleLogin)
	r.Get("/dragon/games", h.dragon.HandleGames)
	r.Get("/dragon/board", h.dragon.HandleBoard)
	r.Post("/dragon/move", h.dragon.HandleMove)

	r.Post("/game/new", h.game.HandleNewGame)
	r.Post("/game/join", h.game.HandleJoinGame)
	r.Get("/game/state", h.game.HandleGameState)
	r.Post("/game/finish", h.game.HandleFinishGame)
	r.Get("/game/live", h.game.HandleLiveGame)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать Redis", zap.Error(err))
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	engine *repository.EngineClient,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	interp := recordUC.NewInterpreter(log)

	atariUseCase, err := atariUC.NewAtariUseCase(engine, cfg.AtariBoardSize, log)
	if err != nil {
		log.Fatal("Не удалось подготовить атари-партию", zap.Error(err))
	}
	machineUseCase, err := machineUC.NewMachineUseCase(engine, cfg.AtariBoardSize, log)
	if err != nil {
		log.Fatal("Не удалось подготовить партию с движком", zap.Error(err))
	}

	dragonRepo := repository.NewDragonRepository(cfg, log, databaseAdapters.redisAdapter.GetClient())
	gameRepo := repository.NewGameRepository(cfg, log, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)

	return &mainDeliveryHandler{
		record:  recordDelivery.NewRecordHandler(log, interp),
		atari:   atariDelivery.NewAtariHandler(log, atariUseCase),
		machine: machineDelivery.NewMachineHandler(log, machineUseCase),
		dragon:  dragonDelivery.NewDragonHandler(log, dragonUC.NewDragonUseCase(dragonRepo, interp, log)),
		game:    gameDelivery.NewGameHandler(log, gameUC.NewGameUseCase(gameRepo, interp, log)),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second) // дать время закрыть соединения
}
