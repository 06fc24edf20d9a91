package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/zerotrust-agents/agentrt/runtime/canonical"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/llm"
	"github.com/zerotrust-agents/agentrt/runtime/toolrunner"
)

const executorSystemPromptTemplate = `You are the EXECUTOR for an AI agent system.
Your job: propose exactly ONE tool call to execute the current step.

RULES:
- Return ONLY valid JSON (no markdown, no explanations)
- Use only allowed tools
- Provide complete arguments
- Prefer precise tools (e.g. grep before read_file for search)

ALLOWED TOOLS: %s

FORMAT: {"name": "tool_name", "args": {...}}
`

// NewExecutor builds the Executor node (spec.md §4.2): proposes one tool
// call for the current plan step and server-side canonicalizes/hashes it,
// grounded on original_source's executor_node_impl.
func NewExecutor(deps *Deps) graph.NodeFunc {
	return func(ctx context.Context, state graph.WorkingState) (graph.Command, error) {
		if state.CurrentStep >= len(state.Plan) {
			return graph.Command{Goto: graph.NodeFinalizer}, nil
		}
		step := state.Plan[state.CurrentStep]

		allowed := deps.ToolRegistry.List()
		systemPrompt := fmt.Sprintf(executorSystemPromptTemplate, strings.Join(allowed, ", "))

		response, err := deps.LLM.Invoke(ctx, []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Execute step: " + step},
		})
		if err != nil {
			return graph.Command{}, err
		}

		proposed := parseLLMJSON(response, map[string]any{"name": "", "args": map[string]any{}})
		name, _ := proposed["name"].(string)
		args, _ := proposed["args"].(map[string]any)
		if args == nil {
			args = map[string]any{}
		}

		if !deps.ToolRegistry.Allowed(name) {
			return failToInterpreter(fmt.Sprintf("tool %q is not allowed; choose from: %s", name, strings.Join(allowed, ", "))), nil
		}

		if err := deps.ToolRegistry.ValidateArgs(name, args); err != nil {
			return failToInterpreter("schema validation error: " + err.Error()), nil
		}

		isFilesystemTool := containsString(deps.Policy.FilesystemTools, name)
		isEmailTool := name == "send_email"
		if err := deps.Validator.ValidateArgs(args, isFilesystemTool, isEmailTool); err != nil {
			return failToInterpreter("validation error: " + err.Error()), nil
		}

		canonicalArgs, argsHash, err := canonical.CanonicalizeAndHash(args)
		if err != nil {
			return graph.Command{}, fmt.Errorf("nodes: canonicalizing proposed args: %w", err)
		}

		tool := &graph.ProposedTool{
			Name:          name,
			Args:          args,
			CanonicalArgs: canonicalArgs,
			ArgsHash:      argsHash,
			ToolCallID:    toolrunner.NewToolCallID(),
			StepIdx:       state.CurrentStep,
			CreatedAt:     deps.now(),
		}

		return graph.Command{
			Update: graph.Update{ProposedTool: tool},
			Goto:   graph.NodeRiskGate,
		}, nil
	}
}

func failToInterpreter(reason string) graph.Command {
	return graph.Command{
		Update: graph.Update{LastToolResult: graph.Failed(reason)},
		Goto:   graph.NodeInterpreter,
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
