package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"divelog/internal/structures"
)

const version = "1.0.0"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "DIVELOG_LOG_LEVEL")
	viper.BindEnv("persistence.filePath", "DIVELOG_LOGBOOK_PATH")
	viper.BindEnv("persistence.saveInterval", "DIVELOG_SAVE_INTERVAL")
	viper.BindEnv("units.length", "DIVELOG_UNITS_LENGTH")
	viper.BindEnv("units.volume", "DIVELOG_UNITS_VOLUME")
	viper.BindEnv("cache.enabled", "DIVELOG_CACHE_ENABLED")
	viper.BindEnv("cache.size", "DIVELOG_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "divelog"
	conf.Version = version
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
