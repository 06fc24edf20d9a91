package nodes

import (
	"context"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/llm"
)

const plannerSystemPrompt = `You are the PLANNER for an AI agent system.
Your job: break down the user's goal into atomic steps.

RULES:
- Return ONLY valid JSON (no markdown, no explanations)
- Max 8 steps
- Each step: a single action, human-readable
- Do NOT use tool names (e.g. say "List files" not "glob")
- Steps should be sequential and logical

FORMAT: {"plan": ["step1", "step2", ...]}
`

// NewPlanner builds the Planner node (spec.md §4.2), grounded on
// original_source's planner_node_impl.
func NewPlanner(deps *Deps) graph.NodeFunc {
	return func(ctx context.Context, state graph.WorkingState) (graph.Command, error) {
		maxSteps := deps.MaxPlanSteps
		if maxSteps <= 0 {
			maxSteps = 8
		}

		goal, ok := state.LastUserMessage()
		if !ok {
			goal = "No goal specified"
		}

		response, err := deps.LLM.Invoke(ctx, []llm.Message{
			{Role: "system", Content: plannerSystemPrompt},
			{Role: "user", Content: "Goal: " + goal},
		})
		if err != nil {
			return graph.Command{}, err
		}

		data := parseLLMJSON(response, map[string]any{"plan": []any{goal}})

		plan := stringSlice(data["plan"])
		if len(plan) == 0 {
			plan = []string{goal}
		}
		if len(plan) > maxSteps {
			plan = plan[:maxSteps]
		}

		stepStatus := make(map[int]graph.StepStatus, len(plan))
		tries := make(map[int]int, len(plan))
		for i := range plan {
			stepStatus[i] = graph.StepPending
			tries[i] = 0
		}

		return graph.Command{
			Update: graph.Update{
				Plan:        plan,
				CurrentStep: graph.IntPtr(0),
				StepStatus:  stepStatus,
				Tries:       tries,
			},
			Goto: graph.NodeSupervisor,
		}, nil
	}
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
