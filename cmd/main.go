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

	acceptSuggestionHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/accept_suggestion"
	approveAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/approve_appointment"
	cancelAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/complete_appointment"
	createAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/create_appointment"
	declineAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/decline_appointment"
	getAppointmentHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_available_slots"
	getBusinessAppointmentsHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_business_appointments"
	getClientInsightsHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_client_insights"
	getSuggestionsHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_suggestions"
	getWeekScheduleHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/get_week_schedule"
	refreshSuggestionsHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/refresh_suggestions"
	updateDayScheduleHandler "github.com/avdk/BMS-SchedulingService/internal/api/handlers/update_day_schedule"
	"github.com/avdk/BMS-SchedulingService/internal/api/middleware"
	"github.com/avdk/BMS-SchedulingService/internal/config"
	appointmentRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/appointment"
	availabilityRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/availability"
	suggestionRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/suggestion"
	notifierClient "github.com/avdk/BMS-SchedulingService/internal/integrations/notifier"
	serviceCatalogClient "github.com/avdk/BMS-SchedulingService/internal/integrations/servicecatalog"
	analyticsService "github.com/avdk/BMS-SchedulingService/internal/service/analytics"
	appointmentsService "github.com/avdk/BMS-SchedulingService/internal/service/appointments"
	scheduleService "github.com/avdk/BMS-SchedulingService/internal/service/schedule"
	createAppointmentUC "github.com/avdk/BMS-SchedulingService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/avdk/BMS-SchedulingService/internal/usecase/get_available_slots"
	"github.com/avdk/BMS-SchedulingService/pkg/dbmetrics"
	"github.com/avdk/BMS-SchedulingService/pkg/logger"
	"github.com/avdk/BMS-SchedulingService/pkg/metrics"
	"github.com/avdk/BMS-SchedulingService/pkg/simpletxmanager"
	"github.com/avdk/BMS-SchedulingService/pkg/txmanager"
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

	log.Info("Starting BMS-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

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

	// Инициализируем интеграционных клиентов
	catalogClient := serviceCatalogClient.NewClient(
		cfg.ServiceCatalog.URL,
		time.Duration(cfg.ServiceCatalog.Timeout)*time.Second,
		log,
	)
	log.Info("ServiceCatalog client initialized (url=%s timeout=%ds)",
		cfg.ServiceCatalog.URL, cfg.ServiceCatalog.Timeout)

	// Клиент уведомлений подменяется заглушкой, если уведомления выключены
	type NotifierClient interface {
		Send(ctx context.Context, n notifierClient.Notification) error
	}
	var notifier NotifierClient
	if cfg.Notifier.Enabled {
		notifier = notifierClient.NewClient(
			cfg.Notifier.URL,
			time.Duration(cfg.Notifier.Timeout)*time.Second,
			log,
		)
		log.Info("Notifier client initialized (url=%s timeout=%ds)", cfg.Notifier.URL, cfg.Notifier.Timeout)
	} else {
		notifier = notifierClient.NopClient{}
		log.Info("Notifications disabled, using nop client")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository  *appointmentRepo.Repository
		availabilityRepository *availabilityRepo.Repository
		suggestionRepository   *suggestionRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		suggestionRepository = suggestionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		suggestionRepository = suggestionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		notifier,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		availabilityRepository,
		appointmentRepository,
		suggestionRepository,
		&scheduleService.RealTimeProvider{},
		log,
	)
	analyticsSvc := analyticsService.NewService(
		appointmentRepository,
		suggestionRepository,
		&analyticsService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		availabilityRepository,
		catalogClient,
		notifier,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		availabilityRepository,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	approveAppointment := approveAppointmentHandler.NewHandler(appointmentSvc, log)
	declineAppointment := declineAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentSvc, log)
	getWeekSchedule := getWeekScheduleHandler.NewHandler(scheduleSvc, log)
	updateDaySchedule := updateDayScheduleHandler.NewHandler(scheduleSvc, log)
	getSuggestions := getSuggestionsHandler.NewHandler(analyticsSvc, log)
	refreshSuggestions := refreshSuggestionsHandler.NewHandler(analyticsSvc, log)
	acceptSuggestion := acceptSuggestionHandler.NewHandler(analyticsSvc, log)
	getClientInsights := getClientInsightsHandler.NewHandler(analyticsSvc, log)

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

	// Доступные слоты на дату
	api.HandleFunc("/businesses/{businessId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Недельное расписание бизнеса
	api.HandleFunc("/businesses/{businessId}/schedule",
		getWeekSchedule.Handle).Methods(http.MethodGet)

	// Создание записи (виджет самозаписи или сотрудник с X-User-ID)
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Жизненный цикл записей ---
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/approve", approveAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/decline", declineAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Календарь бизнеса ---
	protected.HandleFunc("/businesses/{businessId}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/schedule/{weekday}", updateDaySchedule.Handle).Methods(http.MethodPut)

	// --- Аналитика ---
	protected.HandleFunc("/businesses/{businessId}/suggestions", getSuggestions.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/suggestions/refresh", refreshSuggestions.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/suggestions/{suggestionId}/accept", acceptSuggestion.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/businesses/{businessId}/client-insights", getClientInsights.Handle).Methods(http.MethodGet)

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

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
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
