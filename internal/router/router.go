package router

import (
	"database/sql"
	"net/http"
	"os"

	"kaupod/internal/adapters/assistant/scripted"
	mem "kaupod/internal/adapters/storage/memory"
	pg "kaupod/internal/adapters/storage/postgres"
	"kaupod/internal/domain/chat"
	"kaupod/internal/domain/consultations"
	"kaupod/internal/domain/orders"
	"kaupod/internal/domain/products"
	"kaupod/internal/middleware"
	"kaupod/internal/platform/logger"
	"kaupod/internal/ports/assistant"
	"kaupod/internal/ports/auth"
	"kaupod/internal/ports/geocode"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "kaupod/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: asistente remoto. Si es nil, usa el scripted (modo dev).
	Assistant assistant.Streamer

	// Opcional: reverse geocoding best-effort para pedidos.
	Geocoder geocode.Resolver

	// Opcional: si es nil, se arma desde env.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		orderRepo   orders.Repository
		consultRepo consultations.Repository
		productRepo products.Repository
		chatRepo    chat.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		orderRepo = pg.NewKitOrdersRepo(db)
		consultRepo = pg.NewConsultationsRepo(db)
		productRepo = pg.NewProductsRepo(db)
		chatRepo = pg.NewChatRepo(db)
	} else {
		orderRepo = mem.NewKitOrderRepo()
		consultRepo = mem.NewConsultationRepo()
		productRepo = mem.NewProductRepo()
		chatRepo = mem.NewChatRepo()
	}

	// Asistente: remoto si está configurado, scripted para dev
	streamer := opts.Assistant
	if streamer == nil {
		streamer = scripted.New()
	}

	// Services por módulo
	ordersSvc := orders.NewService(orderRepo, opts.Geocoder, log)
	consultSvc := consultations.NewService(consultRepo)
	productsSvc := products.NewService(productRepo)
	chatSvc := chat.NewService(chatRepo, streamer, log)

	// Rutas por módulo
	orders.RegisterRoutes(r, ordersSvc)
	consultations.RegisterRoutes(r, consultSvc)
	products.RegisterRoutes(r, productsSvc)
	chat.RegisterRoutes(r, chatSvc)

	return r
}
