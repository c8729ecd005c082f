package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/create_reservation"
	getAvailabilityHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/get_availability"
	getReservationHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/get_reservation"
	getReservationsHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/get_reservations"
	overridePriceHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/override_price"
	updateStatusHandler "github.com/lesnaya-zaimka/booking-service/internal/api/handlers/update_reservation_status"
	"github.com/lesnaya-zaimka/booking-service/internal/api/middleware"
	"github.com/lesnaya-zaimka/booking-service/internal/config"
	blackoutRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/blackout"
	pricingRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/pricing"
	reservationRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/reservation"
	"github.com/lesnaya-zaimka/booking-service/internal/notify"
	"github.com/lesnaya-zaimka/booking-service/internal/ratelimit"
	reservationsService "github.com/lesnaya-zaimka/booking-service/internal/service/reservations"
	getAvailabilityUC "github.com/lesnaya-zaimka/booking-service/internal/usecase/get_availability"
	submitReservationUC "github.com/lesnaya-zaimka/booking-service/internal/usecase/submit_reservation"
	"github.com/lesnaya-zaimka/booking-service/pkg/dbmetrics"
	"github.com/lesnaya-zaimka/booking-service/pkg/logger"
	"github.com/lesnaya-zaimka/booking-service/pkg/metrics"
	"github.com/lesnaya-zaimka/booking-service/pkg/simpletxmanager"
	"github.com/lesnaya-zaimka/booking-service/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-service...")
	log.Info("Configuration loaded from config.toml")

	// Строим каталог ресурсов
	catalog := cfg.Catalog()
	log.Info("Resource catalog built: %d resources configured", len(catalog))

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		blackoutRepository    *blackoutRepo.Repository
		pricingRepository     *pricingRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		blackoutRepository = blackoutRepo.NewRepository(wrappedDB)
		pricingRepository = pricingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		blackoutRepository = blackoutRepo.NewRepository(db)
		pricingRepository = pricingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем rate limiter: Redis для счётчиков окна, если доступен,
	// иначе счётчики в памяти процесса
	var limiterStore ratelimit.Store
	var redisStore *ratelimit.RedisStore

	if cfg.Redis.Enabled {
		redisStore = ratelimit.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisStore.Ping(context.Background()); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		limiterStore = redisStore
		log.Info("Rate limiter using redis store at %s", cfg.Redis.Addr)
	} else {
		limiterStore = ratelimit.NewMemoryStore()
		log.Info("Rate limiter using in-memory store")
	}

	rateLimiter := ratelimit.NewLimiter(
		limiterStore,
		reservationRepository,
		log,
		cfg.RateLimit.MaxPendingPerPhone,
		cfg.RateLimit.MaxSubmitsPerOriginHour,
	)

	// Инициализируем издателя событий (если включён)
	var publisher submitReservationUC.NotificationPublisher
	var kafkaProducer *notify.Producer

	if cfg.Kafka.Enabled {
		kafkaProducer = notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = kafkaProducer
		log.Info("Kafka producer initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		publisher = notify.NopPublisher{}
		log.Info("Kafka disabled, reservation events will not be published")
	}

	// Инициализируем сервис бронирований для персонала
	reservationSvc := reservationsService.NewService(
		catalog,
		reservationRepository,
		txMgr,
		time.Duration(cfg.Reservations.PendingTTLMinutes)*time.Minute,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		catalog,
		reservationRepository,
		blackoutRepository,
		pricingRepository,
		log,
	)

	submitReservationUseCase := submitReservationUC.NewUseCase(
		catalog,
		reservationRepository,
		blackoutRepository,
		pricingRepository,
		txMgr,
		rateLimiter,
		publisher,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createReservation := createReservationHandler.NewHandler(submitReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getReservations := getReservationsHandler.NewHandler(reservationSvc, log)
	updateStatus := updateStatusHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	overridePrice := overridePriceHandler.NewHandler(reservationSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность ресурса на дату
	api.HandleFunc("/resources/{resourceType}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Создание бронирования гостем
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// ============================================================
	// STAFF ROUTES (требуют X-Staff-ID header)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth)

	// Получение бронирования по ID
	staff.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Список бронирований ресурса с фильтрацией
	staff.HandleFunc("/resources/{resourceType}/reservations", getReservations.Handle).Methods(http.MethodGet)

	// Перевод бронирования в новый статус
	staff.HandleFunc("/reservations/{reservationId}/status", updateStatus.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	staff.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// Административная корректировка цены
	staff.HandleFunc("/reservations/{reservationId}/price", overridePrice.Handle).Methods(http.MethodPatch)

	// Фоновая уборка просроченных pending бронирований
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		interval := time.Duration(cfg.Reservations.ExpirySweepIntervalMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("Pending expiry sweep started (interval=%s, ttl=%dm)",
			interval, cfg.Reservations.PendingTTLMinutes)

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := reservationSvc.ExpirePending(sweepCtx); err != nil {
					log.Error("Pending expiry sweep failed: %v", err)
				}
			}
		}
	}()

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновую уборку
	stopSweep()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	// Закрываем внешние подключения
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Error("Failed to close kafka producer: %v", err)
		}
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			log.Error("Failed to close redis store: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
