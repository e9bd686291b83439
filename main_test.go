package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		want    config
		wantErr string
	}{
		{
			name: "defaults",
			env:  map[string]string{"DB_CONNECTION_STRING": "postgres://localhost/starwars"},
			want: config{
				addr:          "0.0.0.0:3000",
				databaseURL:   "postgres://localhost/starwars",
				runMigrations: true,
				logLevel:      slog.LevelInfo,
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"DB_CONNECTION_STRING": "dsn",
				"PORT":                 "8080",
				"RUN_MIGRATIONS":       "false",
				"LOG_LEVEL":            "debug",
			},
			want: config{addr: "0.0.0.0:8080", databaseURL: "dsn", runMigrations: false, logLevel: slog.LevelDebug},
		},
		{
			name: "flags override environment",
			args: []string{"-a", "127.0.0.1:9000", "-d", "flag-dsn", "-m=false"},
			env:  map[string]string{"DB_CONNECTION_STRING": "env-dsn", "PORT": "8080"},
			want: config{addr: "127.0.0.1:9000", databaseURL: "flag-dsn", runMigrations: false, logLevel: slog.LevelInfo},
		},
		{
			name:    "missing connection string",
			env:     map[string]string{},
			wantErr: "DB_CONNECTION_STRING is required",
		},
		{
			name:    "bad port",
			env:     map[string]string{"DB_CONNECTION_STRING": "dsn", "PORT": "http"},
			wantErr: "invalid PORT",
		},
		{
			name:    "bad migrations flag",
			env:     map[string]string{"DB_CONNECTION_STRING": "dsn", "RUN_MIGRATIONS": "sometimes"},
			wantErr: "invalid RUN_MIGRATIONS",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"DB_CONNECTION_STRING": "dsn", "LOG_LEVEL": "chatty"},
			wantErr: "invalid LOG_LEVEL",
		},
		{
			name:    "unknown flag",
			args:    []string{"-z"},
			env:     map[string]string{"DB_CONNECTION_STRING": "dsn"},
			wantErr: "flag provided but not defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadConfig(tt.args, envOf(tt.env))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, got, cmp.AllowUnexported(config{})))
		})
	}
}

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- startServer(ctx, addr, router, logger) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body) == "pong"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_ListenError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err = startServer(context.Background(), listener.Addr().String(), http.NotFoundHandler(), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}
