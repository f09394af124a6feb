package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/api/option"

	"vyruchaiBack/internal/config"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":4001"
	} else {
		port = ":" + port
	}

	addr := flag.String("addr", port, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	fcmClient := newFCMClient(cfg, errorLog)
	rdb := newRedisClient(cfg, errorLog)

	app := initializeApp(db, cfg, fcmClient, rdb, errorLog, infoLog)

	staleAfter := time.Duration(cfg.Cleaner.StaleAfterDays) * 24 * time.Hour
	startRequestCleaner(context.Background(), app.requestRepo, staleAfter, infoLog, errorLog)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
		ExposedHeaders:   []string{"Authorization"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      addSecurityHeaders(c.Handler(app.routes())),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}

// newFCMClient initializes Firebase messaging. Missing credentials
// disable pushes instead of stopping the server.
func newFCMClient(cfg config.Config, errorLog *log.Logger) *messaging.Client {
	if cfg.FCM.CredentialsFile == "" {
		return nil
	}

	ctx := context.Background()
	fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FCM.CredentialsFile))
	if err != nil {
		errorLog.Printf("firebase init failed, pushes disabled: %v", err)
		return nil
	}
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		errorLog.Printf("firebase messaging init failed, pushes disabled: %v", err)
		return nil
	}
	return client
}

// newRedisClient connects the GEO index. Without Redis the nearby
// search endpoint degrades, everything else keeps working.
func newRedisClient(cfg config.Config, errorLog *log.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		errorLog.Printf("redis unavailable, geo index disabled: %v", err)
		return nil
	}
	return rdb
}
