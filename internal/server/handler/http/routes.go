package http

import (
	"net/http"

	"github.com/tdnguyen/astroserve/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the readings API.
//
// Only GET /api/auth/profile and PUT /api/auth/change-password sit
// behind cookie authentication; everything else is public, as the
// dashboard expects. Literal route segments (system, readings,
// meanings, user-results) are registered before the parameterized
// /{planet}/{zodiac} catch-all so they are never shadowed.
func NewRouter(
	authHandler *AuthHandler,
	astrologyHandler *AstrologyHandler,
	numerologyHandler *NumerologyHandler,
	usersHandler *UsersHandler,
	tokens middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Body-bearing requests must be JSON; bodyless GETs pass through.
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.CookieAuth(tokens))
				r.Get("/profile", authHandler.Profile)
				r.Put("/change-password", authHandler.ChangePassword)
			})
		})

		r.Route("/astrology", func(r chi.Router) {
			r.Get("/system", astrologyHandler.Systems)
			r.Post("/", astrologyHandler.AddSystem)
			r.Put("/{id:[0-9]+}", astrologyHandler.UpdateSystem)
			r.Delete("/{id:[0-9]+}", astrologyHandler.DeleteSystem)

			r.Post("/save-results", astrologyHandler.SaveResults)
			r.Get("/user-results", astrologyHandler.UserResults)
			r.Get("/user-results/{phone}", astrologyHandler.UserResultsByPhone)
			r.Delete("/user-results/{id}", astrologyHandler.DeleteUserResult)

			r.Get("/readings", astrologyHandler.Readings)
			r.Get("/readings/phone/{phone}", astrologyHandler.ReadingsByPhone)
			r.Get("/readings/{id}", astrologyHandler.ReadingByID)

			r.Get("/meanings/{zodiac}", astrologyHandler.Meanings)
			r.Post("/meanings/{zodiac}", astrologyHandler.SaveMeanings)

			r.Get("/{planet}/{zodiac}", astrologyHandler.Interpretation)
		})

		r.Route("/numerology", func(r chi.Router) {
			r.Post("/calculate", numerologyHandler.Calculate)
			r.Get("/history/{phoneNumber}", numerologyHandler.History)
			r.Get("/result/{id}", numerologyHandler.Result)
			r.Delete("/result/{id}", numerologyHandler.DeleteResult)

			r.Get("/system", numerologyHandler.Systems)
			r.Post("/", numerologyHandler.AddSystem)
			r.Put("/{id:[0-9]+}", numerologyHandler.UpdateSystem)
			r.Delete("/{id:[0-9]+}", numerologyHandler.DeleteSystem)

			r.Get("/readings", numerologyHandler.NumerologyReadings)

			r.Get("/meanings/{number}", numerologyHandler.Meanings)
			r.Post("/meanings/{number}", numerologyHandler.SaveMeanings)
			r.Delete("/meanings/{table}/{number}", numerologyHandler.DeleteMeaning)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", usersHandler.List)
			r.Post("/", usersHandler.Create)
			r.Get("/statistics", usersHandler.Statistics)
			r.Get("/phone/{phone}", usersHandler.GetByPhone)
			r.Get("/{id}", usersHandler.Get)
			r.Put("/{id}", usersHandler.Update)
			r.Delete("/{id}", usersHandler.Delete)
		})
	})

	return r
}
