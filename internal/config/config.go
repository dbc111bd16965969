package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 词库目录，目录下的所有 .json 文件会在启动时被加载
	WordsDir string `mapstructure:"words_dir"`
	// 对外访问地址，用于生成房间加入链接（二维码）
	PublicURL string `mapstructure:"public_url"`

	// 猜词阶段的倒计时秒数
	GuessSeconds int `mapstructure:"guess_seconds"`
	// 先手队伍首轮猜词的加长倒计时秒数
	FirstGuessSeconds int `mapstructure:"first_guess_seconds"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("words_dir", "./words")
	v.SetDefault("public_url", "http://localhost:3000")
	v.SetDefault("guess_seconds", 60)
	v.SetDefault("first_guess_seconds", 120)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	return &config
}
