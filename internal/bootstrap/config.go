package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string  `mapstructure:"SERVER_PORT"`
	RedisUrl        string  `mapstructure:"REDIS_URL"`
	MongoUri        string  `mapstructure:"MONGO_URI"`
	MongoDatabase   string  `mapstructure:"MONGO_DATABASE"`
	EnginePath      string  `mapstructure:"ENGINE_PATH"`
	EngineArgs      string  `mapstructure:"ENGINE_ARGS"`
	DragonBaseUrl   string  `mapstructure:"DRAGON_BASE_URL"`
	DragonLoginFile string  `mapstructure:"DRAGON_LOGIN_FILE"`
	AtariBoardSize  int     `mapstructure:"ATARI_BOARD_SIZE"`
	DefaultKomi     float64 `mapstructure:"DEFAULT_KOMI"`
	IsLocalCors     bool    `mapstructure:"LOCAL_CORS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MONGO_DATABASE", "ink_goban")
	viper.SetDefault("ENGINE_PATH", "gnugo")
	viper.SetDefault("ENGINE_ARGS", "--mode gtp")
	viper.SetDefault("DRAGON_BASE_URL", "https://www.dragongoserver.net")
	viper.SetDefault("DRAGON_LOGIN_FILE", "/tmp/dragon-go-server-login")
	viper.SetDefault("ATARI_BOARD_SIZE", 9)
	viper.SetDefault("DEFAULT_KOMI", 6.5)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
