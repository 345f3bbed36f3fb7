package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Tahmini kar hesabında kullanılan maliyet oranı (ciro x oran = tahmini maliyet).
	// Gerçek ürün maliyeti değil, yönetimin belirlediği buluşsal bir orandır.
	CostOfGoodsRatio float64
}

func Load() *Config {
	// .env varsa yükle, yoksa sessizce devam et (production'da env değişkenleri kullanılır)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=magaza port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		CostOfGoodsRatio: getEnvFloat("COST_OF_GOODS_RATIO", 0.70),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.CostOfGoodsRatio <= 0 || cfg.CostOfGoodsRatio >= 1 {
		log.Fatalf("[FATAL] COST_OF_GOODS_RATIO 0 ile 1 arasında olmalı: %v", cfg.CostOfGoodsRatio)
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[WARN] %s sayıya çevrilemedi, varsayılan kullanılıyor: %v", key, def)
	}
	return def
}
