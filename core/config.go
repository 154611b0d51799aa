package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		Build                     string
		Env                       string // DEV (local; default), TEST, QA, PROD
		WorkDir                   string
		FrontendBaseURL           string
		AdminURL                  string
		APIURL                    string
		SystemEmail               string
		RollbarToken              string
		SendgridApiKey            string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration

		Server         ServerConfig
		Database       DatabaseConfig
		Storage        StorageConfig
		Eventbrite     EventbriteConfig
		ActiveCampaign ActiveCampaignConfig
		Tasks          TasksConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		Name          string
		DisableTLS    bool
	}

	StorageConfig struct {
		Bucket              string
		CredentialsFile     string
		SignedURLExpiration time.Duration
	}

	EventbriteConfig struct {
		BaseURL string
	}

	ActiveCampaignConfig struct {
		Timeout time.Duration
	}

	TasksConfig struct {
		Workers   int
		QueueSize int
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the configuration from the environment (and the optional config/.env.<env> file).
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Academia")
	v.SetDefault("secretKey", "8h)q4g+7!x2v$-a1@k0jxs=0(w&4m9eh#l6#yz4r^1n!t*3%ud")
	v.SetDefault("build", "develop")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("adminURL", "http://localhost:3001")
	v.SetDefault("apiURL", "http://localhost:8000")
	v.SetDefault("systemEmail", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromName", "Academia")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbUser", "academia")
	v.SetDefault("dbPassword", "academia")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "academia")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("storageBucket", "")
	v.SetDefault("storageCredentialsFile", "")
	v.SetDefault("storageSignedURLExpiration", 15*time.Minute)

	v.SetDefault("eventbriteBaseURL", "https://www.eventbriteapi.com/v3")
	v.SetDefault("activeCampaignTimeout", 10*time.Second)

	v.SetDefault("taskWorkers", 4)
	v.SetDefault("taskQueueSize", 256)

	v.SetEnvPrefix("academia")

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 v.GetString("secretKey"),
		Build:                     v.GetString("build"),
		Env:                       env,
		WorkDir:                   workDir,
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		AdminURL:                  strings.TrimRight(v.GetString("adminURL"), "/"),
		APIURL:                    strings.TrimRight(v.GetString("apiURL"), "/"),
		SystemEmail:               v.GetString("systemEmail"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		DefaultFromEmail:          mail.Address{Name: v.GetString("defaultFromName"), Address: v.GetString("defaultFromEmail")},
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Storage: StorageConfig{
			Bucket:              v.GetString("storageBucket"),
			CredentialsFile:     v.GetString("storageCredentialsFile"),
			SignedURLExpiration: v.GetDuration("storageSignedURLExpiration"),
		},
		Eventbrite: EventbriteConfig{
			BaseURL: strings.TrimRight(v.GetString("eventbriteBaseURL"), "/"),
		},
		ActiveCampaign: ActiveCampaignConfig{
			Timeout: v.GetDuration("activeCampaignTimeout"),
		},
		Tasks: TasksConfig{
			Workers:   v.GetInt("taskWorkers"),
			QueueSize: v.GetInt("taskQueueSize"),
		},
	}
}
