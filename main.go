package main

import (
	"context"
	"log"
	"time"

	"dailyread/config"
	"dailyread/controllers"
	"dailyread/database"
	"dailyread/handlers"
	"dailyread/routes"
	"dailyread/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "dailyread/docs"
)

// @title Daily Read API
// @version 1.0
// @description Cached read and create access to the blog service behind Daily Read

// @host localhost:8080
// @BasePath /api/v1

// initOTEL exports traces of outgoing blog service calls when an OTLP
// endpoint is configured. The returned func flushes the exporter.
func initOTEL(ctx context.Context, endpoint string) func(context.Context) error {
	if endpoint == "" {
		return func(context.Context) error { return nil }
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.Fatalf("otel exporter: %v", err)
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("dailyread"),
	))
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown
}

func newCacheStore(ctx context.Context, cfg *config.Config) services.CacheStore {
	if cfg.CacheBackend != "redis" {
		return services.NewMemoryStore(cfg.CacheGCTime)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		log.Fatalf("redis tracing: %v", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}
	log.Printf("Query cache backed by redis at %s", cfg.RedisAddr)
	return services.NewRedisStore(rdb, cfg.CacheGCTime)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	shutdown := initOTEL(ctx, cfg.OTLPEndpoint)
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	cache := services.NewQueryCache(newCacheStore(ctx, cfg), cfg.CacheStaleTime)
	blogClient := services.NewBlogClient(cfg.BlogAPIURL, cfg.BlogAPITimeout)

	postService := services.NewPostService(blogClient, cache)
	draftService := services.NewDraftService(db)
	hubService := services.NewHubService()
	hubService.Follow(cache)

	pageController := controllers.NewPageController(postService, draftService, cfg.RenderWait)
	draftController := controllers.NewDraftController(draftService, postService, pageController, hubService)
	postController := controllers.NewPostController(postService)
	wsHandler := handlers.NewWebSocketHandler(hubService, cache, cfg.CORSAllowedOrigins)

	r := routes.NewEngine(cfg)
	routes.SetupRoutes(r, pageController, draftController, postController, wsHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Swagger docs available at: http://localhost:%s/swagger/index.html", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
