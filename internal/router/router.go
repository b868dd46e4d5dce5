package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/auth"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/chat"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/city"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/itinerary"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/search"
)

// Config carries the handlers and middleware the router wires together.
// Server-wide middleware (request ID, logger, recoverer) is applied in
// main.go before this router is mounted.
type Config struct {
	AuthHandler            *auth.Handler
	ChatHandler            chat.Handler
	CityHandler            *city.Handler
	SearchHandler          *search.Handler
	ItineraryHandler       itinerary.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter builds the application route tree. Everything except the
// saved-itinerary CRUD and logout is public: the conversational flow and
// ad-hoc generation work without an account.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)

			r.Get("/city", cfg.CityHandler.Info)

			r.Post("/search", cfg.SearchHandler.Search)

			r.Post("/itineraries/generate", cfg.ItineraryHandler.GenerateItineraryHandler)

			r.Route("/chat/sessions", func(r chi.Router) {
				r.Post("/", cfg.ChatHandler.CreateSessionHandler)
				r.Post("/{sessionID}/choice", cfg.ChatHandler.ChoiceHandler)
				r.Post("/{sessionID}/message", cfg.ChatHandler.MessageHandler)
				r.Get("/{sessionID}", cfg.ChatHandler.TranscriptHandler)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			r.Post("/itineraries", cfg.ItineraryHandler.SaveItineraryHandler)
			r.Get("/itineraries", cfg.ItineraryHandler.GetUserItinerariesHandler)
			r.Get("/itineraries/{itineraryID}", cfg.ItineraryHandler.GetItineraryHandler)
			r.Delete("/itineraries/{itineraryID}", cfg.ItineraryHandler.DeleteItineraryHandler)
		})
	})

	return r
}
