package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	MySQLPoolSize int
	UseMySQLFlag  string
	AppEnv        string
	AppPort       string
	DataDir       string
	JWTSecret     string
	// CORSOrigins lists the browser origins allowed to call the API with
	// credentials.
	CORSOrigins []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	env := os.Getenv("NODE_ENV")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	cfg := &Config{
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: os.Getenv("MYSQL_DATABASE"),
		MySQLPoolSize: getEnvInt("MYSQL_POOL_SIZE", 10),
		UseMySQLFlag:  os.Getenv("USE_MYSQL"),
		AppEnv:        env,
		AppPort:       getEnv("APP_PORT", "3000"),
		DataDir:       getEnv("DATA_DIR", "data"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", "http://localhost:3000"),
	}

	return cfg
}

// UseMySQL reports whether persistence goes to MySQL instead of the JSON files.
func (c *Config) UseMySQL() bool {
	return c.UseMySQLFlag == "true" || c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
