package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig 单个MCP服务器
type ServerConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// ServersFile 服务器列表文件结构
type ServersFile struct {
	Servers []ServerConfig `yaml:"servers"`
}

// CallTimeout 解析服务器级超时，未设置或无效时返回fallback
func (s ServerConfig) CallTimeout(fallback time.Duration) time.Duration {
	if s.Timeout == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s.Timeout); err == nil && d > 0 {
		return d
	}
	return fallback
}

// DefaultServers echo、math、todos三个示例服务器
func DefaultServers(baseURL string) []ServerConfig {
	baseURL = strings.TrimRight(baseURL, "/")
	names := []string{"echo", "math", "todos"}
	servers := make([]ServerConfig, 0, len(names))
	for _, name := range names {
		servers = append(servers, ServerConfig{
			Name: name,
			URL:  fmt.Sprintf("%s/%s/mcp/", baseURL, name),
		})
	}
	return servers
}

// LoadServers 读取YAML服务器列表，url中的${VAR}会被环境变量替换
func LoadServers(path string) ([]ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取服务器配置失败: %w", err)
	}
	return ParseServers(data)
}

// ParseServers 解析YAML服务器列表
func ParseServers(data []byte) ([]ServerConfig, error) {
	var file ServersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析服务器配置失败: %w", err)
	}

	seen := map[string]bool{}
	servers := make([]ServerConfig, 0, len(file.Servers))
	for i, server := range file.Servers {
		server.Name = strings.TrimSpace(server.Name)
		server.URL = strings.TrimSpace(os.ExpandEnv(server.URL))
		if server.Name == "" {
			return nil, fmt.Errorf("第%d个服务器缺少name", i+1)
		}
		if server.URL == "" {
			return nil, fmt.Errorf("服务器%s缺少url", server.Name)
		}
		if seen[server.Name] {
			return nil, fmt.Errorf("服务器名称重复: %s", server.Name)
		}
		seen[server.Name] = true
		servers = append(servers, server)
	}
	return servers, nil
}

// Select 按名称筛选服务器，name为空或"all"时返回全部
func Select(servers []ServerConfig, name string) ([]ServerConfig, error) {
	if name == "" || name == "all" {
		return servers, nil
	}
	for _, server := range servers {
		if server.Name == name {
			return []ServerConfig{server}, nil
		}
	}
	return nil, fmt.Errorf("未知服务器: %s", name)
}
