package nodes_test

import (
	"context"
	"errors"

	"github.com/zerotrust-agents/agentrt/runtime/llm"
	"github.com/zerotrust-agents/agentrt/runtime/toolrunner"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Invoke(_ context.Context, _ []llm.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubRunner struct {
	outcome toolrunner.Outcome
	err     error
	calls   int
}

func (s *stubRunner) Call(_ context.Context, _ string, _ map[string]any) (toolrunner.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

var errStub = errors.New("stub failure")
