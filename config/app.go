package config

// Esewa holds the payment-gateway settings. Passed explicitly into the
// rental and payment services instead of being read from the process
// environment at call time.
type Esewa struct {
	MerchantCode string `env:"ESEWA_MERCHANT_CODE,required"`
	SecretKey    string `env:"ESEWA_SECRET_KEY,required"`
	FormURL      string `env:"ESEWA_FORM_URL"`
}

type App struct {
	Port        string `env:"APP_PORT" default:"5000"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	BackendURL  string `env:"BACKEND_URL"`
	FrontendURL string `env:"FRONTEND_URL"`
	UploadDir   string `env:"UPLOAD_DIR" default:"uploads"`
	Env         string `env:"APP_ENV" default:"dev"`
	Esewa       Esewa
}
