package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitConfig loads .env secrets and the yaml application config. Secrets
// (DATABASE_URL, JWT_SECRET, REDIS_ADDR) stay in the environment; tunables
// (ports, TTLs, CORS origin) live in app.yaml.
func InitConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file is found")
	}

	viper.AddConfigPath("./")
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("client.origin", "http://localhost:3000")
	viper.SetDefault("cache.profile_ttl_seconds", 60)
	viper.SetDefault("og.refresh_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No app.yaml found, using defaults")
			return nil
		}
		return err
	}

	return nil
}
