package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/config"
	"github.com/imilos/researchers-console/internal/session"
)

// exportPasswordEnv — переменная окружения с паролем для export.
const exportPasswordEnv = "RC_EXPORT_PASSWORD"

type exportOptions struct {
	email    string
	password string
	output   string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить справочник исследователей в CSV",
		Long: "Выполняет вход в API, скачивает CSV-выгрузку всех записей и завершает сессию.\n" +
			"Пароль берётся из --password или из " + exportPasswordEnv + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.password == "" {
				opts.password = os.Getenv(exportPasswordEnv)
			}
			if opts.password == "" {
				return fmt.Errorf("--password или %s обязателен", exportPasswordEnv)
			}
			return runExport(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Email пользователя (обязательно)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Пароль пользователя")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "researchers.csv", "Файл выгрузки (- для stdout)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runExport(ctx context.Context, opts exportOptions, stdout io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.SetupLogger(cfg)

	httpClient, err := apiclient.NewHTTPClient(cfg.APICACertPath, cfg.APITimeout)
	if err != nil {
		return err
	}
	anonymous := apiclient.New(cfg.APIURL, httpClient, nil, logger)

	token, err := anonymous.Login(ctx, opts.email, opts.password)
	if err != nil {
		return fmt.Errorf("вход: %s", apiclient.Message(err))
	}

	holder := session.NewHolder(token)
	api := anonymous.WithTokenProvider(holder.Token)
	defer func() {
		if _, logoutErr := api.Logout(ctx); logoutErr != nil {
			logger.Warn("Ошибка выхода из API", slog.String("error", logoutErr.Error()))
		}
		holder.Clear()
	}()

	body, err := api.ExportCSV(ctx)
	if err != nil {
		return fmt.Errorf("выгрузка CSV: %s", apiclient.Message(err))
	}
	defer body.Close()

	out := stdout
	if opts.output != "-" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return fmt.Errorf("создание файла выгрузки: %w", createErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		out = f
	}

	n, err := io.Copy(out, body)
	if err != nil {
		return fmt.Errorf("запись выгрузки: %w", err)
	}

	logger.Info("Выгрузка завершена",
		slog.String("output", opts.output),
		slog.Int64("bytes", n),
	)
	return nil
}
