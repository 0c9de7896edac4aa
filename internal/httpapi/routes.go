package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
	"github.com/DoyleJ11/team-draft-backend/internal/ws"
)

const requestTimeout = 30 * time.Second

type Deps struct {
	Hub            *hub.Hub
	Repo           store.Repository
	Ingester       *roster.Ingester
	Logger         *zap.Logger
	MaxUploadBytes int64
	AllowedOrigins []string
	WS             ws.Options
}

func SetupRoutes(d *Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Ingester == nil {
		d.Ingester = roster.NewIngester(d.Logger)
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 1 << 20
	}
	if d.WS.Logger == nil {
		d.WS.Logger = d.Logger
	}
	if d.WS.OriginPatterns == nil {
		d.WS.OriginPatterns = originHosts(d.AllowedOrigins)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.WS))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", ListDrafts(d))
			r.Post("/", CreateDraft(d))

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", GetDraft(d))
				r.Delete("/", DeleteDraft(d))
				r.Put("/roster", ReplaceRoster(d))
				r.Post("/spin", Command(d, engine.CmdSpin))
				r.Post("/spin-complete", Command(d, engine.CmdSpinComplete))
				r.Post("/confirm", Command(d, engine.CmdConfirm))
				r.Post("/reset", Command(d, engine.CmdReset))
			})
		})
	})
	return r
}

// originHosts turns CORS origins into the host patterns the websocket
// handshake matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		hosts = append(hosts, o)
	}
	return hosts
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
