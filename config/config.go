package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file loaded, relying on environment")
	}
}

// Config returns the value of an environment variable.
func Config(key string) string {
	return os.Getenv(key)
}
