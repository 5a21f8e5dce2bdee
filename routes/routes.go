package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/chess-swiss/handlers"
	"github.com/Dosada05/chess-swiss/middleware"
	"github.com/Dosada05/chess-swiss/models"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	roundHandler *handlers.RoundHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/players", func(r chi.Router) {
		// Публичные маршруты реестра
		r.Get("/", playerHandler.List)
		r.Get("/{nationalID}", playerHandler.GetByNationalID)

		// Изменения реестра только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate)
			r.Use(middleware.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))

			r.Post("/", playerHandler.Register)
			r.Put("/{nationalID}", playerHandler.Update)
			r.Delete("/{nationalID}", playerHandler.Delete)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.GetByID)
		r.Get("/{id}/standings", tournamentHandler.Standings)
		r.Get("/{id}/rounds", roundHandler.List)
		r.Get("/{id}/rounds/current", roundHandler.Current)
		r.Get("/{id}/snapshot", tournamentHandler.Snapshot)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate)
			r.Use(middleware.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin)))

			r.Post("/", tournamentHandler.Create)
			r.Post("/restore", tournamentHandler.Restore)
			r.Post("/{id}/enroll", tournamentHandler.Enroll)
			r.Post("/{id}/start", tournamentHandler.Start)
			r.Post("/{id}/rounds", roundHandler.Open)
			r.Post("/{id}/archive", tournamentHandler.Archive)
			r.Post("/{id}/matches/{matchUID}/result", roundHandler.SubmitResult)
			r.Put("/{id}/matches/{matchUID}/result", roundHandler.OverrideResult)
		})
	})

	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)
}
