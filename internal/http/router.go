package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/EzekielMisgae/alis-app/docs"
	"github.com/EzekielMisgae/alis-app/internal/http/handlers"
)

var mediaDir = "media"

// SetMediaDir points the /media file server at the blob store's directory.
func SetMediaDir(dir string) {
	mediaDir = dir
}

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(RateLimitMiddleware)

	// Identity
	r.Post("/register", handlers.RegisterHandler)
	r.Post("/login", handlers.LoginHandler)
	r.Post("/refresh", handlers.RefreshHandler)

	// Items: reads are open, writes require a token.
	r.Get("/items", handlers.GetItemsHandler)
	r.Get("/items/search", handlers.FilterItemsHandler)
	r.Get("/items/{id}", handlers.GetItemByIDHandler)
	r.Get("/categories", handlers.GetCategoriesHandler)

	// Transactions
	r.Get("/transactions", handlers.GetTransactionsHandler)
	r.Get("/transactions/export", handlers.ExportTransactionsHandler)
	r.Get("/transactions/{id}", handlers.GetTransactionByIDHandler)

	// Dashboard
	r.Get("/stats/dashboard", handlers.GetDashboardStatsHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Post("/items", handlers.CreateItemHandler)
		r.Put("/items/{id}", handlers.UpdateItemHandler)
		r.Delete("/items/{id}", handlers.DeleteItemHandler)
		r.Post("/items/{id}/adjust", handlers.AdjustQuantityHandler)
		r.Post("/items/{id}/image", handlers.UploadItemImageHandler)
		r.Post("/items/import", handlers.ImportItemsHandler)

		r.Post("/transactions", handlers.RecordTransactionHandler)
		r.Post("/transactions/{id}/status", handlers.TransitionTransactionHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
	r.Get("/media/*", fileServer.ServeHTTP)

	return r
}
