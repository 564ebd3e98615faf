package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		LoginRateLimit            float64 // requests per second, per client
		LoginRateBurst            int
	}

	DatabaseConfig struct {
		Engine     string // bolt | postgres | mongo | memory
		Path       string // bolt only
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	PracticeConfig struct {
		TargetWord string
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
		Practice     PracticeConfig
	}
)

func (db DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", db.Host, db.Port)
}

// NewConfig reads the configuration for the current ENV (DEV by default) from the environment,
// after loading `config/.env.<env>` if it exists.
func NewConfig() *Config {
	conf, err := LoadConfig(os.Getenv("CONFIG_DIR"))
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig is NewConfig with an explicit directory for the .env files.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Wordwise")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "t4b!x=9w%kq2+lv@u0r^o7s(h#d1m$yz&e3c)6nj8pga5fi-")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.loginRateLimit", 1.0)
	v.SetDefault("server.loginRateBurst", 5)
	v.SetDefault("database.engine", "bolt")
	v.SetDefault("database.path", filepath.Join("data", "wordwise.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wordwise")
	v.SetDefault("database.user", "wordwise")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("practice.targetWord", "onomatopoeia")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if dir == "" {
		dir = "config"
	}
	dotEnvPath := filepath.Join(dir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			LoginRateLimit:            v.GetFloat64("server.loginRateLimit"),
			LoginRateBurst:            v.GetInt("server.loginRateBurst"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Practice: PracticeConfig{
			TargetWord: v.GetString("practice.targetWord"),
		},
	}, nil
}

// NewTestConfig returns a Config suitable for tests: in-memory store, debug off.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Wordwise",
		Build:     "test",
		SecretKey: "secret",
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			LoginRateLimit:            100,
			LoginRateBurst:            100,
		},
		Database: DatabaseConfig{Engine: "memory"},
		Practice: PracticeConfig{TargetWord: "onomatopoeia"},
	}
}
