package demo

import (
	"fmt"
	"strings"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// Step 一次工具调用
type Step struct {
	Label  string
	Tool   string
	Args   map[string]interface{}
	Render func(*models.ToolCallResult) (string, error)
}

// Scenario 针对一类服务器的调用序列，Tools中的工具全部存在时才会执行
type Scenario struct {
	Name  string
	Tools []string
	Steps []Step
}

// Todo 待办事项
type Todo struct {
	ID   int    `json:"id"`
	Item string `json:"item"`
}

// DefaultScenarios echo、math、todos三个场景
func DefaultScenarios() []Scenario {
	return []Scenario{EchoScenario(), MathScenario(), TodosScenario()}
}

// EchoScenario 用不同消息调用echo
func EchoScenario() Scenario {
	messages := []string{
		"Hello from Go MCP client!",
		"Testing echo functionality",
		"MCP is working great!",
		"🚀 Emojis work too!",
	}
	steps := make([]Step, 0, len(messages))
	for _, message := range messages {
		steps = append(steps, Step{
			Label:  fmt.Sprintf("echo(%q)", message),
			Tool:   "echo",
			Args:   map[string]interface{}{"message": message},
			Render: renderText,
		})
	}
	return Scenario{Name: "echo", Tools: []string{"echo"}, Steps: steps}
}

// MathScenario 用不同数字调用add_two
func MathScenario() Scenario {
	numbers := []int{5, 10, -3, 0, 100}
	steps := make([]Step, 0, len(numbers))
	for _, n := range numbers {
		steps = append(steps, Step{
			Label:  fmt.Sprintf("add_two(%d)", n),
			Tool:   "add_two",
			Args:   map[string]interface{}{"n": n},
			Render: renderText,
		})
	}
	return Scenario{Name: "math", Tools: []string{"add_two"}, Steps: steps}
}

// TodosScenario 查询、创建三条、再查询
func TodosScenario() Scenario {
	samples := []Todo{
		{ID: 1, Item: "Buy groceries"},
		{ID: 2, Item: "Walk the dog"},
		{ID: 3, Item: "Finish MCP client"},
	}

	steps := []Step{{Label: "get_todos()", Tool: "get_todos", Render: renderTodos}}
	for _, todo := range samples {
		steps = append(steps, Step{
			Label:  fmt.Sprintf("create_todo(%q)", todo.Item),
			Tool:   "create_todo",
			Args:   map[string]interface{}{"todo": map[string]interface{}{"id": todo.ID, "item": todo.Item}},
			Render: renderCreated,
		})
	}
	steps = append(steps, Step{Label: "get_todos()", Tool: "get_todos", Render: renderTodos})
	return Scenario{Name: "todos", Tools: []string{"get_todos", "create_todo"}, Steps: steps}
}

func renderText(result *models.ToolCallResult) (string, error) {
	if !result.HasContent() {
		return "(no content)", nil
	}
	return result.PrimaryText(), nil
}

func renderTodos(result *models.ToolCallResult) (string, error) {
	if !result.HasContent() {
		return "(empty list)", nil
	}

	var todos []Todo
	if err := result.DecodeText(&todos); err != nil {
		// 单个对象也接受
		var todo Todo
		if err2 := result.DecodeText(&todo); err2 != nil {
			return "", err
		}
		todos = []Todo{todo}
	}

	items := make([]string, 0, len(todos))
	for _, todo := range todos {
		items = append(items, fmt.Sprintf("#%d %s", todo.ID, todo.Item))
	}
	return strings.Join(items, ", "), nil
}

func renderCreated(result *models.ToolCallResult) (string, error) {
	var reply struct {
		Message string `json:"message"`
	}
	if err := result.DecodeText(&reply); err == nil && reply.Message != "" {
		return reply.Message, nil
	}
	return renderText(result)
}
