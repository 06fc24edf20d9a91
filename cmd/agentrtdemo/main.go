// Command agentrtdemo wires the full runtime together behind a single
// WebSocket endpoint, grounded on the teacher's cmd/demo/main.go wiring
// style (build collaborators, register one agent, run it) and on
// None9527-NGOClaw's gateway/internal/interfaces/websocket handler for the
// upgrader/message-loop shape. Unlike that handler's always-on Hub, a demo
// connection here is stateless-HTTP-shaped to match the runtime's
// AwaitApproval model: each inbound message advances the same
// graph.WorkingState by one engine.Run call and the result is sent back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zerotrust-agents/agentrt/runtime/agent"
	"github.com/zerotrust-agents/agentrt/runtime/audit"
	"github.com/zerotrust-agents/agentrt/runtime/config"
	"github.com/zerotrust-agents/agentrt/runtime/contentstore"
	"github.com/zerotrust-agents/agentrt/runtime/dlp/regexscanner"
	"github.com/zerotrust-agents/agentrt/runtime/engine"
	"github.com/zerotrust-agents/agentrt/runtime/engine/inmemengine"
	"github.com/zerotrust-agents/agentrt/runtime/engineregistry"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
	"github.com/zerotrust-agents/agentrt/runtime/llm"
	"github.com/zerotrust-agents/agentrt/runtime/llm/anthropicadapter"
	"github.com/zerotrust-agents/agentrt/runtime/nodes"
	"github.com/zerotrust-agents/agentrt/runtime/riskgate"
	"github.com/zerotrust-agents/agentrt/runtime/telemetry"
	"github.com/zerotrust-agents/agentrt/runtime/token"
	"github.com/zerotrust-agents/agentrt/runtime/toolrunner"
	"github.com/zerotrust-agents/agentrt/runtime/validator"
)

const demoAgent agent.Ident = "demo.agent"

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		yamlPath   = flag.String("config", "", "path to a YAML config file (defaults are used if empty)")
		envPath    = flag.String("env", ".env", "path to an optional .env file")
		anthropic  = flag.String("anthropic-api-key", "", "Anthropic API key; a canned echo responder is used if empty")
		auditPath  = flag.String("audit-log", "agentrt-audit.jsonl", "path to the hash-chained audit log")
		evictDir   = flag.String("content-store-dir", "agentrt-content", "base directory for evicted tool output")
	)
	flag.Parse()

	cfg, err := config.Load(*yamlPath, *envPath)
	if err != nil {
		log.Fatalf("agentrtdemo: loading config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("agentrtdemo: building logger: %v", err)
	}
	defer logger.Sync()
	tlog := telemetry.NewZapLogger(logger)
	metrics := telemetry.NewOTelMetrics()

	deps, err := buildDeps(cfg, *anthropic, *auditPath, *evictDir)
	if err != nil {
		log.Fatalf("agentrtdemo: building dependencies: %v", err)
	}

	executor := graph.NewExecutor(
		buildNodeRegistry(deps),
		graph.WithNodeTransitionLimit(cfg.NodeTransitionLimit),
		graph.WithTransitionCounter(telemetry.NewGraphCounter(metrics, "agentrt_node_transitions_total")),
		graph.WithRunLatencyHistogram(telemetry.NewGraphHistogram(metrics, "agentrt_run_latency_seconds")),
	)
	eng := inmemengine.New(executor)

	registry := engineregistry.New(func(_ context.Context, name agent.Ident) (engine.Engine, error) {
		tlog.Info(context.Background(), "constructing engine", "agent", string(name))
		return eng, nil
	})

	srv := &server{registry: registry, logger: tlog}
	http.HandleFunc("/ws", srv.handleWebSocket)

	tlog.Info(context.Background(), "agentrtdemo listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("agentrtdemo: %v", err)
	}
}

// buildDeps wires every collaborator a node needs, following the teacher's
// pattern of assembling production dependencies once at process startup
// rather than per-request.
func buildDeps(cfg config.Config, anthropicAPIKey, auditPath, contentDir string) (*nodes.Deps, error) {
	var adapter llm.Adapter
	if anthropicAPIKey != "" {
		a, err := anthropicadapter.NewFromAPIKey(anthropicAPIKey, "claude-sonnet-4-5", 4096)
		if err != nil {
			return nil, err
		}
		adapter = a
	} else {
		adapter = echoAdapter{}
	}

	toolRegistry := toolrunner.NewRegistry()
	if err := toolRegistry.Register(toolrunner.ToolSpec{
		Name:   "echo",
		Schema: []byte(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`),
	}); err != nil {
		return nil, err
	}

	baseRunner := echoRunner{}
	toolRunner := toolrunner.NewTimeoutRunner(
		toolrunner.NewRateLimitedRunner(baseRunner, 5, 5),
		cfg.ToolTimeout(),
	)

	sink := audit.NewJSONLSink(auditPath)
	auditLog, err := audit.New(sink)
	if err != nil {
		return nil, err
	}

	store, err := contentstore.NewFSStore(contentDir)
	if err != nil {
		return nil, err
	}

	tokens, err := token.New(token.Config{Secret: cfg.SecretKey, MaxAge: cfg.ApprovalTTL()})
	if err != nil {
		return nil, err
	}

	return &nodes.Deps{
		LLM:          adapter,
		ToolRegistry: toolRegistry,
		ToolRunner:   toolRunner,
		Validator:    validator.New(cfg.SandboxRoot, cfg.EmailDomainAllowlist),
		Policy:       riskgate.DefaultPolicy(regexscanner.New()),
		Tokens:       tokens,
		Idempotency:  idempotency.NewInMemoryStore(),
		Audit:        auditLog,
		ContentStore: store,

		SandboxRoot:       cfg.SandboxRoot,
		ToolTimeout:       cfg.ToolTimeout(),
		IdempotencyTTL:    cfg.IdempotencyTTL(),
		ApprovalTTL:       cfg.ApprovalTTL(),
		MaxPlanSteps:      cfg.MaxPlanSteps,
		MaxRetriesPerStep: cfg.MaxRetriesPerStep,

		EvictionThresholdChars: cfg.EvictionThresholdChars,
		RehydrationMaxChars:    cfg.RehydrationMaxChars,
	}, nil
}

func buildNodeRegistry(deps *nodes.Deps) map[graph.NodeID]graph.NodeFunc {
	return map[graph.NodeID]graph.NodeFunc{
		graph.NodeRouter:          nodes.NewRouter(deps),
		graph.NodePlanner:         nodes.NewPlanner(deps),
		graph.NodeSupervisor:      nodes.NewSupervisor(deps),
		graph.NodeExecutor:        nodes.NewExecutor(deps),
		graph.NodeRiskGate:        nodes.NewRiskGate(deps),
		graph.NodeAwaitApproval:   nodes.NewAwaitApproval(deps),
		graph.NodeApprovalHandler: nodes.NewApprovalHandler(deps),
		graph.NodeTools:           nodes.NewTools(deps),
		graph.NodeInterpreter:     nodes.NewInterpreter(deps),
		graph.NodeFinalizer:       nodes.NewFinalizer(deps),
	}
}

// echoAdapter is the no-API-key fallback: it turns the latest user message
// into a one-step plan by echoing it back, so the demo runs end to end
// without a provider key configured.
type echoAdapter struct{}

func (echoAdapter) Invoke(_ context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return `{"steps": []}`, nil
	}
	return `{"steps": ["` + messages[len(messages)-1].Content + `"]}`, nil
}

// echoRunner is the only demo tool: it reflects its "text" argument back as
// the tool output, enough to exercise the full Executor→RiskGate→Tools→
// Interpreter path without depending on a live external system.
type echoRunner struct{}

func (echoRunner) Call(_ context.Context, name string, args map[string]any) (toolrunner.Outcome, error) {
	if name != "echo" {
		return toolrunner.Outcome{OK: false, Error: "unknown tool: " + name}, nil
	}
	text, _ := args["text"].(string)
	return toolrunner.Outcome{OK: true, Output: text}, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// turnMessage is the wire shape exchanged over the WebSocket connection:
// one user turn in, one resulting WorkingState snapshot out.
type turnMessage struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
	Content  string `json:"content"`
}

type server struct {
	registry *engineregistry.Registry
	logger   telemetry.Logger
}

// handleWebSocket upgrades the connection and runs one engine.Run per
// inbound turnMessage, keeping the resulting WorkingState in the closure so
// the next message (e.g. an APPROVE/REJECT reply) resumes the same run.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()
	var state graph.WorkingState
	initialized := false

	for {
		var in turnMessage
		if err := conn.ReadJSON(&in); err != nil {
			return
		}

		if !initialized {
			state = graph.NewWorkingState(in.ThreadID, in.UserID)
			initialized = true
		}
		state.Messages = append(state.Messages, graph.Message{Role: graph.RoleUser, Content: in.Content})

		eng, err := s.registry.GetEngine(ctx, demoAgent)
		if err != nil {
			s.writeError(conn, err)
			continue
		}

		runID := in.ThreadID + ":" + time.Now().UTC().Format(time.RFC3339Nano)
		result, err := eng.Run(ctx, runID, state)
		if err != nil {
			s.writeError(conn, err)
			continue
		}
		state = result

		if err := conn.WriteJSON(state); err != nil {
			return
		}
	}
}

func (s *server) writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(map[string]string{"error": err.Error()})
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	s.logger.Error(context.Background(), "run failed", "payload", string(payload))
}
