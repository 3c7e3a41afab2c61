package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvironmentDefaults(t *testing.T) {
	cfg, err := FromEnvironment(map[string]string{
		"MONGODB_URI": "mongodb://localhost:27017",
	})
	require.NoError(t, err)

	require.Equal(t, "3000", cfg.AppPort)
	require.Empty(t, cfg.Env)
	require.Equal(t, "development", cfg.EnvironmentName())
	require.Equal(t, "users", cfg.MongoCollection)
	require.Equal(t, 10*time.Second, cfg.MongoConnectTimeout)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "/dashboard.html", cfg.DashboardPath)
	require.Equal(t, "./public", cfg.StaticDir)
	require.False(t, cfg.LDFlag_DebugRoutes)
	require.False(t, cfg.IsDevelopment(), "stack traces need ENV=development explicitly")
	require.NotEmpty(t, cfg.AppName)
}

func TestFromEnvironmentDevelopment(t *testing.T) {
	cfg, err := FromEnvironment(map[string]string{"ENV": "development"})
	require.NoError(t, err)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, "development", cfg.EnvironmentName())
}

func TestFromEnvironmentOverrides(t *testing.T) {
	cfg, err := FromEnvironment(map[string]string{
		"PORT":                    "8080",
		"ENV":                     "production",
		"MONGODB_CONNECT_TIMEOUT": "3s",
		"CORS_ALLOWED_ORIGINS":    "https://a.example,https://b.example",
		"DEBUG_ROUTES":            "true",
		"DASHBOARD_REDIRECT":      "true",
		"MONGODB_UNIQUE_EMAIL":    "true",
	})
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.AppPort)
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, "production", cfg.EnvironmentName())
	require.Equal(t, 3*time.Second, cfg.MongoConnectTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.LDFlag_DebugRoutes)
	require.True(t, cfg.LDFlag_DashboardRedirect)
	require.True(t, cfg.MongoUniqueEmail)
}

func TestFromEnvironmentRejectsBadValues(t *testing.T) {
	_, err := FromEnvironment(map[string]string{"DEBUG_ROUTES": "maybe"})
	require.Error(t, err)
}

func TestResolveDatabase(t *testing.T) {
	cases := []struct {
		name     string
		uri      string
		explicit string
		want     string
	}{
		{"from uri path", "mongodb://localhost:27017/forms", "", "forms"},
		{"fallback", "mongodb://localhost:27017", "", "test"},
		{"explicit wins", "mongodb://localhost:27017/forms", "intake", "intake"},
		{"replica set", "mongodb://user:pw@h1:27017,h2:27017/geo?replicaSet=rs0", "", "geo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{MongoURI: tc.uri, MongoDatabase: tc.explicit}
			require.NoError(t, cfg.resolveDatabase())
			require.Equal(t, tc.want, cfg.MongoDatabase)
		})
	}
}

func TestResolveDatabaseErrors(t *testing.T) {
	require.EqualError(t, (&Config{}).resolveDatabase(), "MONGODB_URI is missing")
	require.Error(t, (&Config{MongoURI: "postgres://localhost/db"}).resolveDatabase())
}
