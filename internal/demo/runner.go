package demo

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/contextkeeper/mcpprobe/internal/config"
	"github.com/contextkeeper/mcpprobe/internal/mcpclient"
	"github.com/contextkeeper/mcpprobe/internal/models"
	"github.com/contextkeeper/mcpprobe/internal/utils"
)

// Options 运行选项
type Options struct {
	ClientInfo      mcp.Implementation
	ProtocolVersion string
	CallTimeout     time.Duration
	RateLimit       float64 // 每秒工具调用次数，0表示不限
	Progress        bool
	ProgressWriter  io.Writer
	Scenarios       []Scenario
}

// StepResult 单步执行结果
type StepResult struct {
	Scenario string
	Label    string
	Output   string
	Err      error
}

// Report 单个服务器的运行报告
type Report struct {
	Server     string
	Endpoint   string
	ServerInfo mcp.Implementation
	Tools      []models.ToolDescriptor
	Steps      []StepResult
	Skipped    []string
	Err        error // 握手或工具列表失败
}

// Passed 成功步数
func (r *Report) Passed() int {
	n := 0
	for _, step := range r.Steps {
		if step.Err == nil {
			n++
		}
	}
	return n
}

// Failed 失败步数
func (r *Report) Failed() int {
	return len(r.Steps) - r.Passed()
}

// Runner 按场景依次调用服务器上的工具
type Runner struct {
	opts    Options
	limiter *rate.Limiter
}

// NewRunner 创建Runner
func NewRunner(opts Options) *Runner {
	if len(opts.Scenarios) == 0 {
		opts.Scenarios = DefaultScenarios()
	}
	if opts.ProgressWriter == nil {
		opts.ProgressWriter = os.Stderr
	}

	r := &Runner{opts: opts}
	if opts.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return r
}

// RunAll 探测所有服务器。parallel为true时每个服务器一个goroutine，会话之间不共享状态。
func (r *Runner) RunAll(ctx context.Context, servers []config.ServerConfig, parallel bool) ([]*Report, error) {
	reports := make([]*Report, len(servers))
	if parallel {
		var g errgroup.Group
		for i, server := range servers {
			i, server := i, server
			g.Go(func() error {
				reports[i] = r.Run(ctx, server)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, server := range servers {
			reports[i] = r.Run(ctx, server)
		}
	}

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return reports, fmt.Errorf("%d of %d server(s) failed to connect", failed, len(servers))
	}
	return reports, nil
}

// Run 对单个服务器执行握手、列出工具并运行场景。单步失败只记录，继续下一步。
func (r *Runner) Run(ctx context.Context, server config.ServerConfig) *Report {
	report := &Report{Server: server.Name, Endpoint: server.URL}

	session, err := mcpclient.NewSession(server.URL,
		mcpclient.WithTimeout(server.CallTimeout(r.opts.CallTimeout)),
	)
	if err != nil {
		report.Err = err
		return report
	}
	ctx = utils.WithTraceID(ctx, session.ID())
	log := utils.LoggerFromContext(ctx).WithField("server", server.Name)

	client := mcpclient.NewClient(session, r.opts.ClientInfo, mcpclient.WithProtocolVersion(r.opts.ProtocolVersion))
	defer client.Close()

	log.Infof("连接MCP服务器: %s", server.URL)
	if _, err := client.Initialize(ctx); err != nil {
		log.WithError(err).Error("握手失败")
		report.Err = err
		return report
	}
	report.ServerInfo, _ = client.ServerInfo()
	log.Infof("连接成功，服务端: %s v%s", report.ServerInfo.Name, report.ServerInfo.Version)

	tools, err := client.ListTools(ctx)
	if err != nil {
		log.WithError(err).Error("获取工具列表失败")
		report.Err = err
		return report
	}
	report.Tools = tools
	logTools(log, tools)

	var plan []Scenario
	total := 0
	for _, scenario := range r.opts.Scenarios {
		if missing := missingTools(tools, scenario.Tools); len(missing) > 0 {
			log.Warnf("跳过场景%s，缺少工具: %v", scenario.Name, missing)
			report.Skipped = append(report.Skipped, scenario.Name)
			continue
		}
		plan = append(plan, scenario)
		total += len(scenario.Steps)
	}

	var bar *progressbar.ProgressBar
	if r.opts.Progress && total > 0 {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(server.Name),
			progressbar.OptionSetWriter(r.opts.ProgressWriter),
		)
	}

	for _, scenario := range plan {
		log.Infof("运行场景: %s", scenario.Name)
		for _, step := range scenario.Steps {
			if ctx.Err() != nil {
				report.Err = ctx.Err()
				return report
			}
			result := r.runStep(ctx, client, scenario.Name, step)
			if result.Err != nil {
				log.WithError(result.Err).Warnf("  %s 失败", step.Label)
			} else {
				log.Infof("  %s = %s", step.Label, result.Output)
			}
			report.Steps = append(report.Steps, result)
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	log.Infof("完成: 成功%d，失败%d，跳过场景%d", report.Passed(), report.Failed(), len(report.Skipped))
	return report
}

func (r *Runner) runStep(ctx context.Context, client *mcpclient.Client, scenario string, step Step) StepResult {
	result := StepResult{Scenario: scenario, Label: step.Label}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}
	}

	callResult, err := client.CallTool(ctx, step.Tool, step.Args)
	if err != nil {
		result.Err = err
		return result
	}
	if callResult.IsError {
		result.Err = fmt.Errorf("tool %s reported error: %s", step.Tool, callResult.PrimaryText())
		return result
	}

	render := step.Render
	if render == nil {
		render = renderText
	}
	result.Output, result.Err = render(callResult)
	return result
}

func missingTools(tools []models.ToolDescriptor, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := models.FindTool(tools, name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func logTools(log *logrus.Entry, tools []models.ToolDescriptor) {
	log.Infof("发现%d个工具", len(tools))
	for i, tool := range tools {
		log.Infof("%d. %s %s", i+1, tool.Name, tool.Description)
		for _, param := range tool.Parameters() {
			required := ""
			if param.Required {
				required = " (required)"
			}
			log.Debugf("   - %s: %s%s %s", param.Name, param.Type, required, param.Description)
		}
	}
}
