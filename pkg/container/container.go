package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/config"
	infraCache "library-api/internal/infrastructure/cache"
	"library-api/internal/infrastructure/database"
	"library-api/internal/infrastructure/storage"
	"library-api/pkg/cache"
	"library-api/pkg/jwt"

	"library-api/internal/domains/author"
	authorHandler "library-api/internal/domains/author/handler"
	authorRepo "library-api/internal/domains/author/repository"
	authorService "library-api/internal/domains/author/service"
	"library-api/internal/domains/book"
	bookHandler "library-api/internal/domains/book/handler"
	bookRepo "library-api/internal/domains/book/repository"
	bookService "library-api/internal/domains/book/service"
	"library-api/internal/domains/bookcount"
	bookcountHandler "library-api/internal/domains/bookcount/handler"
	"library-api/internal/domains/export"
	exportHandler "library-api/internal/domains/export/handler"
	"library-api/internal/domains/user"
	userHandler "library-api/internal/domains/user/handler"
	userRepo "library-api/internal/domains/user/repository"
	userService "library-api/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisCache
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Queue      *asynq.Client          // enqueue jobs từ API
	Storage    *storage.MinIOStorage // nil nếu MinIO không sẵn sàng

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	AuthorRepo author.Repository
	BookRepo   book.Repository
	UserRepo   user.Repository
	TokenStore user.TokenStore

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	Maintainer    *bookcount.Maintainer
	AuthorService author.Service
	BookService   book.Service
	UserService   user.Service
	ExportService *export.Service
	Archiver      *export.Archiver // nil nếu Storage nil

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	AuthorHandler    *authorHandler.AuthorHandler
	BookHandler      *bookHandler.Handler
	UserHandler      *userHandler.UserHandler
	ExportHandler    *exportHandler.ExportHandler
	ReconcileHandler *bookcountHandler.ReconcileHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph.
// Thứ tự: Config -> Infrastructure -> Repositories -> Services -> Handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	c := &Container{}

	// STEP 1: LOAD CONFIGURATION
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("✅ Config loaded")

	// STEP 2: INITIALIZE DATABASE
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Info().Msg("✅ Database connected")

	// STEP 3: INITIALIZE CACHE (non-critical)
	c.Redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Redis connection failed (non-critical)")
	} else {
		log.Info().Msg("✅ Redis connected")
	}
	c.Cache = c.Redis

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// STEP 4: JOB QUEUE + OBJECT STORAGE
	c.Queue = asynq.NewClient(RedisOpt(cfg.Redis))

	if s, err := storage.NewMinIOStorage(ctx, cfg.MinIO); err != nil {
		log.Warn().Err(err).Msg("⚠️  MinIO unavailable, export archive disabled")
	} else {
		c.Storage = s
		log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("✅ MinIO ready")
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// RedisOpt - asynq dùng chung Redis với cache
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// ========================================
// INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AuthorRepo = authorRepo.NewPostgresRepository(pool, c.Cache)

	// Maintainer nghe notification từ book repository
	c.Maintainer = bookcount.NewMaintainer(c.AuthorRepo)
	c.BookRepo = bookRepo.NewPostgresRepository(pool, c.Maintainer)

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.TokenStore = userRepo.NewTokenStore(c.Cache)
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.BookRepo)
	c.BookService = bookService.NewBookService(c.BookRepo, c.AuthorRepo)
	c.UserService = userService.NewUserService(c.UserRepo, c.TokenStore, c.JWTManager)
	c.ExportService = export.NewService(c.AuthorRepo, c.BookRepo)

	if c.Storage != nil {
		c.Archiver = export.NewArchiver(c.ExportService, c.Storage, export.DefaultArchiveRetention)
	}
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ExportHandler = exportHandler.NewExportHandler(c.ExportService)
	c.ReconcileHandler = bookcountHandler.NewReconcileHandler(c.Maintainer, c.Queue)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng tất cả connections, gọi khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close asynq client")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close database")
		} else {
			log.Info().Msg("✅ Database connections closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	log.Info().Msg("✅ Container cleanup completed")
}
