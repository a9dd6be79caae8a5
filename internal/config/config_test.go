package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("MYSQL_HOST", "localhost")
		t.Setenv("MYSQL_PORT", "3307")
		t.Setenv("MYSQL_USER", "club")
		t.Setenv("MYSQL_PASSWORD", "secret")
		t.Setenv("MYSQL_DATABASE", "clubsite")
		t.Setenv("MYSQL_POOL_SIZE", "4")
		t.Setenv("USE_MYSQL", "true")
		t.Setenv("NODE_ENV", "development")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("DATA_DIR", "/tmp/club")
		t.Setenv("JWT_SECRET", "jwt")
		t.Setenv("CORS_ORIGINS", "https://club.example, https://admin.club.example,,")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.MySQLHost)
		assert.Equal(t, "3307", cfg.MySQLPort)
		assert.Equal(t, "club", cfg.MySQLUser)
		assert.Equal(t, "secret", cfg.MySQLPassword)
		assert.Equal(t, "clubsite", cfg.MySQLDatabase)
		assert.Equal(t, 4, cfg.MySQLPoolSize)
		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "/tmp/club", cfg.DataDir)
		assert.Equal(t, "jwt", cfg.JWTSecret)
		assert.Equal(t, []string{"https://club.example", "https://admin.club.example"}, cfg.CORSOrigins)
		assert.True(t, cfg.UseMySQL())
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("MYSQL_PORT", "")
		t.Setenv("MYSQL_POOL_SIZE", "abc")
		t.Setenv("APP_PORT", "")
		t.Setenv("DATA_DIR", "")
		t.Setenv("NODE_ENV", "")
		t.Setenv("APP_ENV", "staging")
		t.Setenv("CORS_ORIGINS", "")

		cfg := LoadConfig()

		assert.Equal(t, "3306", cfg.MySQLPort)
		assert.Equal(t, 10, cfg.MySQLPoolSize)
		assert.Equal(t, "3000", cfg.AppPort)
		assert.Equal(t, "data", cfg.DataDir)
		assert.Equal(t, "staging", cfg.AppEnv)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	})
}

func TestUseMySQL(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want bool
	}{
		{"flag true", "true", "development", true},
		{"production env", "", "production", true},
		{"flag false in production", "false", "production", true},
		{"unset", "", "", false},
		{"flag other value", "yes", "development", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{UseMySQLFlag: tt.flag, AppEnv: tt.env}
			assert.Equal(t, tt.want, cfg.UseMySQL())
		})
	}
}
