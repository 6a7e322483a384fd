package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupExportAPI(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	logouts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /loginldap", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"token":"tok-1"}}`)
	})
	mux.HandleFunc("GET /customers/download/csv", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "id,name\n1,Ana\n")
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, _ *http.Request) {
		logouts++
		_, _ = io.WriteString(w, `{"message":"Logged out"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("RC_API_URL", srv.URL)
	t.Setenv("RC_LOG_LEVEL", "error")
	return srv, &logouts
}

func TestRunExport_ToFile(t *testing.T) {
	_, logouts := setupExportAPI(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	err := runExport(context.Background(), exportOptions{email: "ana@kg.ac.rs", password: "secret", output: output}, io.Discard)
	if err != nil {
		t.Fatalf("runExport() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("чтение выгрузки: %v", err)
	}
	if string(data) != "id,name\n1,Ana\n" {
		t.Errorf("содержимое выгрузки = %q", data)
	}
	if *logouts != 1 {
		t.Errorf("вызовов logout = %d, ожидается 1", *logouts)
	}
}

func TestRunExport_ToStdout(t *testing.T) {
	setupExportAPI(t)

	var stdout bytes.Buffer
	err := runExport(context.Background(), exportOptions{email: "ana@kg.ac.rs", password: "secret", output: "-"}, &stdout)
	if err != nil {
		t.Fatalf("runExport() error: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "id,name") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunExport_LoginFailure(t *testing.T) {
	_, logouts := setupExportAPI(t)

	err := runExport(context.Background(), exportOptions{email: "ana@kg.ac.rs", password: "wrong", output: "-"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("ожидалась ошибка входа с сообщением API, получено %v", err)
	}
	if *logouts != 0 {
		t.Error("без входа logout не вызывается")
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "dev" {
		t.Errorf("version = %q, ожидается dev", out.String())
	}
}
