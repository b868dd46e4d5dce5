// Package config loads application settings from config.yml, falling back
// to an embedded copy so the binary runs without any files next to it.
// Secrets (API keys, JWT secrets, database password) come from the
// environment, not from the file.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

//go:embed config.yml
var embeddedConfig []byte

type ServerConfig struct {
	HTTPPort string        `mapstructure:"HTTPPort"`
	Timeout  time.Duration `mapstructure:"HTTPTimeout"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	AccessTTL  time.Duration `mapstructure:"accessTTL"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"maxTokens"`
}

type PlacesConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

// CityConfig pins the serviceable area: the boundary polygon and the fixed
// search grid tiling it.
type CityConfig struct {
	Name     string                  `mapstructure:"name"`
	Boundary []types.Coordinate      `mapstructure:"boundary"`
	Grid     []types.SearchGridPoint `mapstructure:"grid"`
}

type ItineraryConfig struct {
	// StrictNoRepeat regenerates a day plan once when it reuses an
	// already-visited place instead of only warning.
	StrictNoRepeat bool `mapstructure:"strictNoRepeat"`
}

type CacheConfig struct {
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
	SearchTTL  time.Duration `mapstructure:"searchTTL"`
}

type Config struct {
	Mode      string          `mapstructure:"mode"`
	Dotenv    string          `mapstructure:"dotenv"`
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Places    PlacesConfig    `mapstructure:"places"`
	City      CityConfig      `mapstructure:"city"`
	Itinerary ItineraryConfig `mapstructure:"itinerary"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Secrets are environment-only.
	v.SetDefault("jwt.secretKey", "")
	_ = v.BindEnv("jwt.secretKey", "JWT_SECRET_KEY")
	_ = v.BindEnv("postgres.password", "POSTGRES_PASSWORD")

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// The server binds fmt.Sprintf(":%s", HTTPPort), so the value must be a
	// bare port with no leading colon.
	if _, _, err := net.SplitHostPort(":" + config.Server.HTTPPort); err != nil {
		return Config{}, fmt.Errorf("server.HTTPPort %q is not a valid port: %w", config.Server.HTTPPort, err)
	}
	if len(config.City.Boundary) < 3 {
		return Config{}, fmt.Errorf("city boundary needs at least 3 vertices, got %d", len(config.City.Boundary))
	}
	if len(config.City.Grid) == 0 {
		return Config{}, fmt.Errorf("city grid must define at least one search point")
	}

	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
