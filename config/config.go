// api/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server ServerConfiguration
	MySQL  DatabaseConfiguration
	Redis  RedisConfiguration
	Cache  CacheConfiguration
	Export ExportConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	Addr     string
	User     string
	Password string
	Database string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr string
}

// CacheConfiguration stores settings for the in-process TTL cache
type CacheConfiguration struct {
	DefaultTTL    string
	SweepInterval string
}

// ExportConfiguration stores settings for export jobs and their streams
type ExportConfiguration struct {
	OutputDir    string
	BatchSize    int
	PollInterval string
	MaxPolls     int
	GraceDelay   string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mysql.addr", "localhost:3306")
	viper.SetDefault("mysql.user", "dev")
	viper.SetDefault("mysql.database", "chittoor_health_db")
	viper.SetDefault("mysql.maxOpenConns", 25)
	viper.SetDefault("mysql.maxIdleConns", 10)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("cache.defaultTTL", "300s")
	viper.SetDefault("cache.sweepInterval", "5m")
	viper.SetDefault("export.outputDir", "exports")
	viper.SetDefault("export.batchSize", 500)
	viper.SetDefault("export.pollInterval", "1s")
	viper.SetDefault("export.maxPolls", 600)
	viper.SetDefault("export.graceDelay", "1s")
	viper.SetDefault("export.terminalRetention", "1s")
	viper.SetDefault("export.maxJobAge", "1h")
	viper.SetDefault("export.lockTTL", "1h")
	viper.SetDefault("auth.jwtSecret", "")
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
