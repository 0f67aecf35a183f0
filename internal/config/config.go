package config

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type AIEmbeddingConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"apiKey"`
	AccessKey      string `toml:"accessKey"`
	SecretKey      string `toml:"secretKey"`
	BaseURL        string `toml:"baseURL"`
	Region         string `toml:"region"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
	RetryTimes     int    `toml:"retryTimes"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
	ChatModel AIChatModelConfig `toml:"chatModel"`
}

// RAGConfig 文档入库与检索相关参数
type RAGConfig struct {
	ChunkSize            int   `toml:"chunkSize"`            // 切片长度（rune 数，默认 500）
	ChunkOverlap         int   `toml:"chunkOverlap"`         // 切片重叠长度（默认 50）
	UseRecursiveChunker  bool  `toml:"useRecursiveChunker"`  // 是否启用递归切片器
	MaxUploadBytes       int64 `toml:"maxUploadBytes"`       // 单文件大小上限（默认 50MB）
	FetchTimeoutSeconds  int   `toml:"fetchTimeoutSeconds"`  // 远程文档拉取超时（默认 30s）
	OracleTimeoutSeconds int   `toml:"oracleTimeoutSeconds"` // 解析/摘要模型调用超时（默认 120s）
	SyncQueueSize        int   `toml:"syncQueueSize"`        // 持久化同步队列长度（默认 256）
	LoadOnStartup        bool  `toml:"loadOnStartup"`        // 启动时是否从数据库回载文档
}

type Config struct {
	MainConfig  `toml:"mainConfig"`
	MysqlConfig `toml:"mysqlConfig"`
	JwtConfig   `toml:"jwtConfig"`
	AIConfig    `toml:"aiConfig"`
	LogConfig   `toml:"logConfig"`
	RAGConfig   `toml:"ragConfig"`
}

var config *Config

func LoadConfig() error {
	configPath := os.Getenv("CAREERRAG_CONFIG")
	if configPath == "" {
		configPath = "configs/config_local.toml"
	}
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
		applyDefaults(config)
	}
	return config
}

func applyDefaults(c *Config) {
	if c.RAGConfig.ChunkSize <= 0 {
		c.RAGConfig.ChunkSize = 500
	}
	if c.RAGConfig.ChunkOverlap < 0 {
		c.RAGConfig.ChunkOverlap = 0
	}
	if c.RAGConfig.MaxUploadBytes <= 0 {
		c.RAGConfig.MaxUploadBytes = 50 * 1024 * 1024
	}
	if c.RAGConfig.FetchTimeoutSeconds <= 0 {
		c.RAGConfig.FetchTimeoutSeconds = 30
	}
	if c.RAGConfig.OracleTimeoutSeconds <= 0 {
		c.RAGConfig.OracleTimeoutSeconds = 120
	}
	if c.RAGConfig.SyncQueueSize <= 0 {
		c.RAGConfig.SyncQueueSize = 256
	}
}
