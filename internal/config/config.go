package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl"`     // For S3/R2
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		ReceiptMaxSize  int64    `yaml:"receipt_max_size"`  // Квитанции об оплате
		CVMaxSize       int64    `yaml:"cv_max_size"`       // Резюме
		MaterialMaxSize int64    `yaml:"material_max_size"` // Материалы курсов
		ReceiptTypes    []string `yaml:"receipt_types"`     // Allowed MIME types
		CVTypes         []string `yaml:"cv_types"`
		MaterialTypes   []string `yaml:"material_types"`
	} `yaml:"upload"`

	Payments struct {
		// AutoApprove включает self-service режим: покупка с квитанцией
		// сразу получает статус approved без участия администратора.
		AutoApprove bool   `yaml:"auto_approve"`
		Currency    string `yaml:"currency"`
		BankName    string `yaml:"bank_name"`
		BankAccount string `yaml:"bank_account"`
	} `yaml:"payments"`

	Admin struct {
		// Первый администратор, создается при старте если его нет
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	serverEnv := os.Getenv("SERVER_ENV")
	portStr := os.Getenv("SERVER_PORT")
	jwtSecret := os.Getenv("JWT_SECRET")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		AppConfig = &cfg
		applyUploadDefaults()
		return
	}

	log.Println("✅ Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = serverEnv
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.TTL = 60

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.Payments.AutoApprove = os.Getenv("PAYMENTS_AUTO_APPROVE") == "true"
	cfg.Payments.Currency = "ETB"
	cfg.Payments.BankName = "Commercial Bank of Ethiopia"
	cfg.Payments.BankAccount = "1000123456789"

	AppConfig = &cfg
	applyUploadDefaults()
}

// applyUploadDefaults заполняет лимиты загрузки если они не заданы в yaml.
// Лимиты согласованы с фронтендом: квитанции и CV до 5MB, материалы до 20MB.
func applyUploadDefaults() {
	u := &AppConfig.Upload

	if u.ReceiptMaxSize == 0 {
		u.ReceiptMaxSize = 5 * 1024 * 1024
	}
	if u.CVMaxSize == 0 {
		u.CVMaxSize = 5 * 1024 * 1024
	}
	if u.MaterialMaxSize == 0 {
		u.MaterialMaxSize = 20 * 1024 * 1024
	}

	if len(u.ReceiptTypes) == 0 {
		u.ReceiptTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	}
	if len(u.CVTypes) == 0 {
		u.CVTypes = []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	}
	if len(u.MaterialTypes) == 0 {
		u.MaterialTypes = []string{"application/pdf"}
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
