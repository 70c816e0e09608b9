package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ClientConfig 保存构建客户端的配置。
type ClientConfig struct {
	BaseURL string        `mapstructure:"BASE_URL"`
	Timeout time.Duration `mapstructure:"TIMEOUT"` // 0 表示不限制
}

// BuildServerConfig holds configuration for the loopback build server.
type BuildServerConfig struct {
	Host          string        `mapstructure:"HOST"`
	Port          string        `mapstructure:"PORT"`
	ReadTimeout   time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout  time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxFileSizeMB int64         `mapstructure:"MAX_FILE_SIZE_MB"`
	TempPath      string        `mapstructure:"TEMP_PATH"` // 上传暂存目录，空则使用系统临时目录
	CORS          CORSConfig    `mapstructure:"CORS"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders []string `mapstructure:"ALLOWED_HEADERS"`
	ExposedHeaders []string `mapstructure:"EXPOSED_HEADERS"`
	MaxAge         int      `mapstructure:"MAX_AGE"`
}

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName     string            `mapstructure:"APP_NAME"`
	AppVersion  string            `mapstructure:"APP_VERSION"`
	LogLevel    string            `mapstructure:"LOG_LEVEL"`
	Client      ClientConfig      `mapstructure:"CLIENT"`
	Storage     StorageConfig     `mapstructure:"STORAGE"`
	BuildServer BuildServerConfig `mapstructure:"BUILD_SERVER"`
}

// StorageConfig holds configuration for output storage.
type StorageConfig struct {
	Type      string   `mapstructure:"TYPE"`       // "local", "s3"
	LocalPath string   `mapstructure:"LOCAL_PATH"` // 空表示写在源文件旁边
	S3        S3Config `mapstructure:"S3"`
}

// S3Config holds configuration for AWS S3.
type S3Config struct {
	BucketName      string `mapstructure:"BUCKET_NAME"`
	Region          string `mapstructure:"REGION"`
	Prefix          string `mapstructure:"PREFIX"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY"`
	Endpoint        string `mapstructure:"ENDPOINT"` // For S3 compatible storage like MinIO
}

// flagKeys 把命令行参数映射到配置键。
var flagKeys = map[string]string{
	"server":    "CLIENT.BASE_URL",
	"timeout":   "CLIENT.TIMEOUT",
	"out-dir":   "STORAGE.LOCAL_PATH",
	"storage":   "STORAGE.TYPE",
	"log-level": "LOG_LEVEL",
	"addr-host": "BUILD_SERVER.HOST",
	"addr-port": "BUILD_SERVER.PORT",
}

// LoadConfig reads configuration from file or environment variables.
// Flags in fs that appear in flagKeys override both when they were set explicitly.
func LoadConfig(path string, fs *pflag.FlagSet) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "rastiv")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("LOG_LEVEL", "info")

	// Client Defaults
	v.SetDefault("CLIENT.BASE_URL", "http://127.0.0.1:8000")
	v.SetDefault("CLIENT.TIMEOUT", 60*time.Second)

	// Storage Defaults
	v.SetDefault("STORAGE.TYPE", "local")
	v.SetDefault("STORAGE.LOCAL_PATH", "")
	v.SetDefault("STORAGE.S3.BUCKET_NAME", "")
	v.SetDefault("STORAGE.S3.REGION", "us-east-1")
	v.SetDefault("STORAGE.S3.PREFIX", "")
	v.SetDefault("STORAGE.S3.ACCESS_KEY_ID", "")
	v.SetDefault("STORAGE.S3.SECRET_ACCESS_KEY", "")
	v.SetDefault("STORAGE.S3.ENDPOINT", "")

	// BuildServer Defaults
	v.SetDefault("BUILD_SERVER.HOST", "127.0.0.1")
	v.SetDefault("BUILD_SERVER.PORT", "8000")
	v.SetDefault("BUILD_SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("BUILD_SERVER.WRITE_TIMEOUT", 60*time.Second)
	v.SetDefault("BUILD_SERVER.MAX_FILE_SIZE_MB", 50)
	v.SetDefault("BUILD_SERVER.TEMP_PATH", "")
	v.SetDefault("BUILD_SERVER.CORS.ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("BUILD_SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("BUILD_SERVER.CORS.ALLOWED_HEADERS", []string{"Content-Type"})
	v.SetDefault("BUILD_SERVER.CORS.EXPOSED_HEADERS", []string{"Content-Disposition", "Content-Length"})
	v.SetDefault("BUILD_SERVER.CORS.MAX_AGE", 300) // 5 minutes

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// CLIENT.BASE_URL <- CLIENT_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err = v.BindPFlag(key, f); err != nil {
					return
				}
			}
		}
	}

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
