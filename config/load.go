package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", "5000"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		BackendURL:  getenv("BACKEND_URL", "http://localhost:5000"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5173"),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		Env:         getenv("APP_ENV", "dev"),
		Esewa: Esewa{
			MerchantCode: getenv("ESEWA_MERCHANT_CODE", "EPAYTEST"),
			SecretKey:    must("ESEWA_SECRET_KEY"),
			FormURL:      getenv("ESEWA_FORM_URL", "https://rc-epay.esewa.com.np/api/epay/main/v2/form"),
		},
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
