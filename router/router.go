package router

import (
	"database/sql"
	"net/http"
	"time"

	"telyourstory/config"
	"telyourstory/internal/auth"
	"telyourstory/internal/browse"
	"telyourstory/internal/feed"
	storyHandler "telyourstory/internal/story"
	"telyourstory/internal/story/repository"
	"telyourstory/internal/story/service"
	"telyourstory/middleware"
)

func Setup(db *sql.DB, blobs service.BlobStore, hub *feed.Hub, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// Live feed of published stories
	mux.HandleFunc("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
		feed.ServeWs(hub, w, r)
	})

	// Stories
	storyRepo := repository.NewStoryRepository(db)
	storySvc := service.NewStoryService(storyRepo, blobs, hub)
	engine := browse.NewEngine(storyRepo)
	// A publish marks the browse cache stale so the next list shows it.
	storySvc.Cache = engine
	stories := storyHandler.NewStoryHandler(storySvc, engine)

	// Accounts
	userRepo := auth.NewUserRepository(db)
	authSvc := auth.NewService(userRepo, []byte(cfg.JWTSecret), 72*time.Hour)
	accounts := auth.NewHandler(authSvc)

	requireAuth := middleware.RequireAuth

	mux.Handle("/api/auth/register", http.HandlerFunc(accounts.Register))
	mux.Handle("/api/auth/login", http.HandlerFunc(accounts.Login))
	mux.Handle("/api/auth/me", requireAuth(http.HandlerFunc(accounts.Me)))

	mux.Handle("/api/stories/publish", requireAuth(http.HandlerFunc(stories.PublishStory)))
	mux.Handle("/api/stories", http.HandlerFunc(stories.GetStories))
	mux.Handle("/api/stories/get", http.HandlerFunc(stories.GetStory))

	return middleware.CORSMiddleware(mux)
}
