package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// DefaultBaseURL 三个示例服务器的公共前缀
const DefaultBaseURL = "http://localhost:10000"

// Config 应用配置
type Config struct {
	// 客户端身份
	ClientName      string
	ClientVersion   string
	ProtocolVersion string

	// 服务器配置
	BaseURL     string // 默认服务器列表的URL前缀
	ServersFile string // YAML服务器列表，为空时使用默认列表

	// 调用配置
	CallTimeout time.Duration // 单次HTTP往返超时
	RateLimit   float64       // 每秒工具调用次数上限，0表示不限
	Parallel    bool          // 多个服务器并行探测
	Progress    bool          // 显示进度条

	// 日志配置
	LogLevel  string
	LogFormat string // text 或 json
}

// Load 从.env和环境变量加载配置
func Load() *Config {
	envPaths := []string{
		"config/.env",
		".env",
	}

	loaded := false
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				logrus.Debugf("成功加载.env文件: %s", path)
				loaded = true
				break
			}
		}
	}
	if !loaded {
		logrus.Debug("未找到.env文件，使用系统环境变量")
	}

	return &Config{
		ClientName:      getEnv("MCP_CLIENT_NAME", "mcpprobe"),
		ClientVersion:   getEnv("MCP_CLIENT_VERSION", "1.0.0"),
		ProtocolVersion: getEnv("MCP_PROTOCOL_VERSION", models.ProtocolVersion),

		BaseURL:     strings.TrimRight(getEnv("MCP_BASE_URL", DefaultBaseURL), "/"),
		ServersFile: getEnv("MCP_SERVERS_FILE", ""),

		CallTimeout: getEnvAsDuration("MCP_CALL_TIMEOUT", 30*time.Second),
		RateLimit:   getEnvAsFloat("MCP_RATE_LIMIT", 0),
		Parallel:    getEnvAsBool("MCP_PARALLEL", false),
		Progress:    getEnvAsBool("MCP_PROGRESS", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Servers 返回要探测的服务器列表
func (c *Config) Servers() ([]ServerConfig, error) {
	if c.ServersFile == "" {
		return DefaultServers(c.BaseURL), nil
	}
	return LoadServers(c.ServersFile)
}

// String 返回配置的字符串表示
func (c *Config) String() string {
	return fmt.Sprintf(
		"客户端: %s v%s, 协议版本: %s, 服务器前缀: %s, 服务器文件: %q, 调用超时: %v, 限流: %.2f/s, 并行: %v",
		c.ClientName, c.ClientVersion, c.ProtocolVersion, c.BaseURL, c.ServersFile,
		c.CallTimeout, c.RateLimit, c.Parallel,
	)
}

// 从环境变量获取字符串值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// 从环境变量获取布尔值
func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取浮点值
func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取时间值
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}
