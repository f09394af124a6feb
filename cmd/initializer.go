package main

import (
	"database/sql"
	"log"
	"net/http"

	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"vyruchaiBack/internal/config"
	"vyruchaiBack/internal/geo"
	"vyruchaiBack/internal/handlers"
	"vyruchaiBack/internal/repositories"
	"vyruchaiBack/internal/services"
	"vyruchaiBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	userRepo     *repositories.UserRepository
	requestRepo  *repositories.RequestRepository
	tokenManager *utils.Manager

	userHandler         *handlers.UserHandler
	requestHandler      *handlers.RequestHandler
	taskHandler         *handlers.TaskHandler
	taskResponseHandler *handlers.TaskResponseHandler
	chatHandler         *handlers.ChatHandler
	reviewHandler       *handlers.ReviewHandler
	geoHandler          *handlers.GeoHandler
	pushTokenHandler    *handlers.PushTokenHandler

	chatHub *ChatHub
}

func initializeApp(db *sql.DB, cfg config.Config, fcmClient *messaging.Client, rdb *redis.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	requestRepo := repositories.RequestRepository{DB: db}
	offerRepo := repositories.OfferRepository{DB: db}
	taskRepo := repositories.TaskRepository{DB: db}
	taskResponseRepo := repositories.TaskResponseRepository{DB: db}
	chatRepo := repositories.ChatRepository{DB: db}
	messageRepo := repositories.MessageRepository{DB: db}
	reviewRepo := repositories.ReviewRepository{DB: db}
	pushTokenRepo := repositories.PushTokenRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	storage, err := utils.NewStorage(
		cfg.Storage.Endpoint, cfg.Storage.Region, cfg.Storage.Bucket,
		cfg.Storage.AccessKey, cfg.Storage.SecretKey,
	)
	if err != nil {
		errorLog.Printf("object storage disabled: %v", err)
	}

	var locator services.TaskLocator
	if rdb != nil {
		locator = geo.NewTaskLocator(rdb)
	}

	// Services
	notificationService := &services.NotificationService{Client: fcmClient, TokenRepo: &pushTokenRepo}
	userService := &services.UserService{
		UserRepo:     &userRepo,
		TokenManager: tokenManager,
	}
	requestService := &services.RequestService{
		RequestRepo: &requestRepo,
		OfferRepo:   &offerRepo,
		UserRepo:    &userRepo,
	}
	taskService := &services.TaskService{
		TaskRepo:     &taskRepo,
		ResponseRepo: &taskResponseRepo,
		ChatRepo:     &chatRepo,
		MessageRepo:  &messageRepo,
		Notifier:     notificationService,
		Locator:      locator,
	}
	chatService := &services.ChatService{
		ChatRepo:    &chatRepo,
		MessageRepo: &messageRepo,
		TaskRepo:    &taskRepo,
	}
	reviewService := &services.ReviewService{
		ReviewRepo: &reviewRepo,
		TaskRepo:   &taskRepo,
		UserRepo:   &userRepo,
	}

	geocoder := geo.NewYandexClient(nil, cfg.Geocoder.APIKey)

	chatHub := NewChatHub(chatService, notificationService)

	// Handlers
	userHandler := &handlers.UserHandler{UserService: userService, Storage: storage}
	requestHandler := &handlers.RequestHandler{RequestService: requestService}
	taskHandler := &handlers.TaskHandler{TaskService: taskService, Storage: storage}
	taskResponseHandler := &handlers.TaskResponseHandler{TaskService: taskService}
	chatHandler := &handlers.ChatHandler{ChatService: chatService, Notification: notificationService, Hub: chatHub}
	reviewHandler := &handlers.ReviewHandler{ReviewService: reviewService}
	geoHandler := &handlers.GeoHandler{Geocoder: geocoder}
	pushTokenHandler := &handlers.PushTokenHandler{Notification: notificationService}

	return &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		cfg:                 cfg,
		db:                  db,
		userRepo:            &userRepo,
		requestRepo:         &requestRepo,
		tokenManager:        tokenManager,
		userHandler:         userHandler,
		requestHandler:      requestHandler,
		taskHandler:         taskHandler,
		taskResponseHandler: taskResponseHandler,
		chatHandler:         chatHandler,
		reviewHandler:       reviewHandler,
		geoHandler:          geoHandler,
		pushTokenHandler:    pushTokenHandler,
		chatHub:             chatHub,
	}
}

// openDB selects the driver from config: "mysql" by default, "pgx" for
// a Postgres deployment.
func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "mysql"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
