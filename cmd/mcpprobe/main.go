package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/contextkeeper/mcpprobe/internal/config"
	"github.com/contextkeeper/mcpprobe/internal/demo"
	"github.com/contextkeeper/mcpprobe/internal/utils"
)

func main() {
	cfg := config.Load()

	serversFile := flag.String("config", cfg.ServersFile, "YAML server list (defaults to echo/math/todos under MCP_BASE_URL)")
	serverName := flag.String("server", "all", "server name to probe, or all")
	url := flag.String("url", "", "probe a single endpoint URL instead of the server list")
	parallel := flag.Bool("parallel", cfg.Parallel, "probe servers concurrently")
	rateLimit := flag.Float64("rate", cfg.RateLimit, "max tool calls per second, 0 for unlimited")
	progress := flag.Bool("progress", cfg.Progress, "show a progress bar per server")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level")
	flag.Parse()

	cfg.ServersFile = *serversFile
	utils.InitLogging(*logLevel, cfg.LogFormat, os.Stderr)
	logrus.Debugf("配置: %s", cfg)

	servers, err := resolveServers(cfg, *serverName, *url)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := demo.NewRunner(demo.Options{
		ClientInfo:      mcp.Implementation{Name: cfg.ClientName, Version: cfg.ClientVersion},
		ProtocolVersion: cfg.ProtocolVersion,
		CallTimeout:     cfg.CallTimeout,
		RateLimit:       *rateLimit,
		Progress:        *progress,
	})

	reports, err := runner.RunAll(ctx, servers, *parallel)
	for _, report := range reports {
		if report == nil {
			continue
		}
		status := "ok"
		if report.Err != nil {
			status = report.Err.Error()
		}
		logrus.Infof("[%s] %s 成功%d 失败%d 跳过%v: %s",
			report.Server, report.Endpoint, report.Passed(), report.Failed(), report.Skipped, status)
	}
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func resolveServers(cfg *config.Config, name, url string) ([]config.ServerConfig, error) {
	if url != "" {
		if name == "" || name == "all" {
			name = "custom"
		}
		return []config.ServerConfig{{Name: name, URL: url}}, nil
	}
	servers, err := cfg.Servers()
	if err != nil {
		return nil, err
	}
	return config.Select(servers, name)
}
