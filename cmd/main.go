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

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bookSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/book_slot"
	calendarHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/calendar"
	cancelBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/cancel_booking"
	createSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/delete_slot"
	exportRosterHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/export_slot_roster"
	getBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_booking"
	getSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_slot"
	hasBookedHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/has_booked"
	listClassSlotsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/list_class_slots"
	listSlotBookingsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/list_slot_bookings"
	listStudentBookingsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/list_student_bookings"
	listTeacherSlotsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/list_teacher_slots"
	updateSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/update_slot"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/config"
	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/notifier"
	bookingsService "github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-SlotBooking/internal/service/slots"
	bookSlotUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/book_slot"
	"github.com/m04kA/SMC-SlotBooking/migrations"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/txmanager"
)

// Общие интерфейсы PostgreSQL и in-memory реализаций, нужны для выбора драйвера в конфиге
type slotStore interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	GetByIDIncludeDeleted(ctx context.Context, id int64) (*domain.Slot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error)
	Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error)
}

type bookingStore interface {
	InsertIfCapacityAvailable(ctx context.Context, slot *domain.Slot, studentID uuid.UUID) (*domain.Booking, error)
	CountConfirmed(ctx context.Context, slotID int64) (int, error)
	CountConfirmedBySlots(ctx context.Context, slotIDs []int64) (map[int64]int, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetConfirmedBySlotAndStudent(ctx context.Context, slotID int64, studentID uuid.UUID) (*domain.Booking, error)
	ListBySlot(ctx context.Context, slotID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	ListByStudent(ctx context.Context, filter domain.StudentBookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason domain.CancelReason) (bool, error)
	CancelAllBySlot(ctx context.Context, slotID int64, reason domain.CancelReason) ([]uuid.UUID, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level, logger.WithFormat(logger.Format(cfg.Logs.Format)))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SlotBooking...")
	log.Info("Configuration loaded from config.toml (storage driver=%s)", cfg.Database.Driver)

	// Инициализируем метрики (если включены); nil коллектор ничего не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	var (
		slotRepository    slotStore
		bookingRepository bookingStore
		txMgr             txManager
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		slotRepository = store.Slots()
		bookingRepository = store.Bookings()
		txMgr = store
		log.Warn("Using in-memory storage, data will be lost on restart")

	default:
		// lib/pq регистрируется как "postgres", pgx stdlib как "pgx"
		db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (driver=%s, host=%s, port=%d, db=%s)",
			cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Database.AutoMigrate {
			if err := migrations.Up(context.Background(), db, log); err != nil {
				log.Fatal("Failed to apply migrations: %v", err)
			}
		}

		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Уведомления: Redis pub/sub или только лог, в обоих случаях асинхронно
	var dispatcher notifier.Notifier = notifier.NewLogNotifier(log)
	if cfg.Redis.Enabled {
		redisClient := notifier.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is not reachable at %s, notifications will be retried per event: %v", cfg.Redis.Addr, err)
		}
		cancel()

		dispatcher = notifier.NewRedisNotifier(redisClient, cfg.Redis.Channel, log)
		log.Info("Redis notifier enabled (addr=%s, channel=%s)", cfg.Redis.Addr, cfg.Redis.Channel)
	}
	asyncNotifier := notifier.NewAsync(dispatcher, time.Duration(cfg.Redis.PublishTimeout)*time.Second, log)

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(
		slotRepository,
		bookingRepository,
		txMgr,
		asyncNotifier,
		metricsCollector,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		txMgr,
		asyncNotifier,
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(
		slotRepository,
		bookingRepository,
		txMgr,
		asyncNotifier,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	calendarH := calendarHandler.NewHandler(log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	updateSlot := updateSlotHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)
	listClassSlots := listClassSlotsHandler.NewHandler(slotSvc, log)
	listTeacherSlots := listTeacherSlotsHandler.NewHandler(slotSvc, log)
	bookSlot := bookSlotHandler.NewHandler(bookSlotUseCase, log)
	hasBooked := hasBookedHandler.NewHandler(bookingSvc, log)
	listSlotBookings := listSlotBookingsHandler.NewHandler(bookingSvc, log)
	exportRoster := exportRosterHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	listStudentBookings := listStudentBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/calendar/holidays", calendarH.Holidays).Methods(http.MethodGet)
	api.HandleFunc("/calendar/teaching-days/{date}", calendarH.TeachingDay).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	teacherOnly := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireRole(middleware.RoleTeacher, h) }
	studentOnly := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireRole(middleware.RoleStudent, h) }

	// --- Слоты ---
	protected.HandleFunc("/slots", teacherOnly(createSlot.Handle)).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}", teacherOnly(updateSlot.Handle)).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}", teacherOnly(deleteSlot.Handle)).Methods(http.MethodDelete)
	protected.HandleFunc("/classes/{classId}/slots", listClassSlots.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/teachers/{teacherId}/slots", listTeacherSlots.Handle).Methods(http.MethodGet)

	// --- Записи на слот ---
	protected.HandleFunc("/slots/{slotId}/bookings", studentOnly(bookSlot.Handle)).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}/bookings", teacherOnly(listSlotBookings.Handle)).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}/bookings/me", studentOnly(hasBooked.Handle)).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}/roster.xlsx", teacherOnly(exportRoster.Handle)).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", studentOnly(cancelBooking.Handle)).Methods(http.MethodPatch)
	protected.HandleFunc("/students/{studentId}/bookings", studentOnly(listStudentBookings.Handle)).Methods(http.MethodGet)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся уведомлений, отправленных до остановки сервера
	asyncNotifier.Close()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
