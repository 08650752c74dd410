package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/jasepellerin/family-tree/config"
	"github.com/jasepellerin/family-tree/database"
	"github.com/jasepellerin/family-tree/handlers"
	"github.com/jasepellerin/family-tree/media"
	"github.com/jasepellerin/family-tree/realtime"
	"github.com/jasepellerin/family-tree/repository"
	"github.com/jasepellerin/family-tree/tree"
	"github.com/jasepellerin/family-tree/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.PhotosPath, cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}

	personRepo := repository.NewPersonRepository(db)

	store := tree.NewStore()
	people, err := personRepo.LoadAll()
	if err != nil {
		log.Fatalf("FATAL: Failed to load people from database: %v", err)
	}
	store.Load(people)
	log.Printf("Loaded %d people from database", store.Len())

	hub := realtime.NewHub()
	go hub.Run()
	store.OnChange(hub.BroadcastTreeUpdated)

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypePhoto:     filepath.Base(cfg.PhotosPath),
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	log.Printf("Initializing photo worker pool (Workers: %d, Queue Size: %d)...", cfg.NumPhotoWorkers, cfg.PhotoQueueSize)
	photoProcessor := workers.NewPhotoProcessor(store, personRepo, mediaStore, cfg.ThumbnailMaxSize, cfg.PhotoQueueSize, cfg.NumPhotoWorkers)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing photos in: %s", cfg.PhotosPath)
	log.Printf("Thumbnail max size (longest side): %dpx", cfg.ThumbnailMaxSize)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	personHandler := &handlers.PersonHandler{Store: store, Repo: personRepo, Media: mediaStore}
	photoHandler := &handlers.PhotoHandler{Store: store, Repo: personRepo, Media: mediaStore, Processor: photoProcessor, MaxUploadBytes: cfg.MaxUploadBytes}
	treeHandler := &handlers.TreeHandler{Store: store, Repo: personRepo, SQLDB: sqlDB, MaxImportBytes: cfg.MaxUploadBytes}

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.ListPeople)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Delete("/", personHandler.DeletePerson)
				r.Route("/relationships", func(r chi.Router) {
					r.Post("/", personHandler.AddRelationship)
					r.Delete("/{type}/{related_id}", personHandler.RemoveRelationship)
				})
				r.Route("/photo", func(r chi.Router) {
					r.Put("/", photoHandler.UploadPhoto)
					r.Delete("/", photoHandler.DeletePhoto)
				})
			})
		})

		r.Get("/layout", treeHandler.GetLayout)

		r.Route("/tree", func(r chi.Router) {
			r.Get("/export", treeHandler.ExportTree)
			r.Post("/import", treeHandler.ImportTree)
			r.Get("/stats", treeHandler.GetStats)
		})

		photoSubDir := filepath.Base(cfg.PhotosPath)
		r.Get("/"+photoSubDir+"/*", handlers.AssetServer(cfg.MediaStoragePath, photoSubDir))
		log.Printf("Registered photo server at /%s/*", photoSubDir)

		thumbnailSubDir := filepath.Base(cfg.ThumbnailsPath)
		r.Get("/"+thumbnailSubDir+"/*", handlers.AssetServer(cfg.MediaStoragePath, thumbnailSubDir))
		log.Printf("Registered thumbnail server at /%s/*", thumbnailSubDir)
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
