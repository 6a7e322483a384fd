package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/imilos/researchers-console/internal/api/handlers"
	"github.com/imilos/researchers-console/internal/config"
	"github.com/imilos/researchers-console/internal/server"
	"github.com/imilos/researchers-console/internal/service"
	"github.com/imilos/researchers-console/internal/ui/i18n"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер консоли",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Порт HTTP-сервера (переопределяет RC_PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Researchers Console запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_url", cfg.APIURL),
	)
	if cfg.SessionSecret == "" {
		logger.Warn("RC_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 3. Каталоги переводов UI
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		return err
	}

	// 4. topologymetrics — мониторинг удалённого API
	ctx := cmd.Context()
	var apiChecker handlers.ReadinessChecker
	dephealthSvc, dephealthErr := service.NewDephealthService(
		cfg.DephealthGroup,
		cfg.APIURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		apiChecker = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 5. Клиент API, реестр консолей, обработчики и маршруты
	srv, err := server.Build(cfg, logger, apiChecker)
	if err != nil {
		return err
	}

	// 6. Запуск HTTP-сервера (блокирует до сигнала завершения)
	runErr := srv.Run()

	// 7. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("Researchers Console остановлена")
	return nil
}
