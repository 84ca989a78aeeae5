package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	analyticsrpc "fitlab/internal/modules/analytics/adapter/out/rpc"
	"fitlab/internal/modules/analytics/domain"
	analyticsout "fitlab/internal/modules/analytics/port/out"
	"fitlab/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct {
	logger       logging.Logger
	startTimeout time.Duration
}

func NewGRPCHost(logger logging.Logger) analyticsout.Host {
	if logger == nil {
		logger = logging.Nop()
	}
	return &GRPCHost{logger: logger, startTimeout: defaultStartTimeout}
}

func (h *GRPCHost) Connect(ctx context.Context, manifest domain.Manifest) (analyticsout.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  analyticsrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          analyticsrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     h.startTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   manifest.Name,
			Output: pluginLogWriter{logger: h.logger, plugin: manifest.Name},
			Level:  hclog.Debug,
		}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start plugin %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(analyticsrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense plugin %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(analyticsrpc.AnalyticsPluginClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: rpc client type mismatch", manifest.Name)
	}
	return &grpcSession{name: manifest.Name, client: client, rpc: typed}, nil
}

type grpcSession struct {
	name   string
	client *plugin.Client
	rpc    analyticsrpc.AnalyticsPluginClient
}

func (s *grpcSession) Metadata(ctx context.Context) (domain.Metadata, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := s.rpc.Describe(callCtx)
	if err != nil {
		return domain.Metadata{}, s.callError("describe", callCtx, err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (s *grpcSession) Commands(ctx context.Context) ([]domain.CommandDescriptor, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := s.rpc.ListCommands(callCtx)
	if err != nil {
		return nil, s.callError("list commands", callCtx, err)
	}
	out := make([]domain.CommandDescriptor, 0, len(response.Commands))
	for _, cmd := range response.Commands {
		out = append(out, domain.CommandDescriptor{
			ID:              cmd.ID,
			Title:           cmd.Title,
			Description:     cmd.Description,
			Kind:            domain.CommandKind(cmd.Kind),
			InputSchemaJSON: cmd.InputSchemaJSON,
			TimeoutMS:       int(cmd.TimeoutMS),
		})
	}
	return out, nil
}

func (s *grpcSession) Run(ctx context.Context, invocation domain.Invocation, timeout time.Duration) (domain.Outcome, error) {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	callCtx, cancel := callContext(ctx, timeout)
	defer cancel()
	response, err := s.rpc.Run(callCtx, &analyticsrpc.RunRequest{
		CommandID: invocation.CommandID,
		InputJSON: invocation.InputJSON,
		Context: analyticsrpc.InvocationContext{
			WorkspacePath: invocation.Context.WorkspacePath,
			AthleteID:     invocation.Context.AthleteID,
			AttemptID:     invocation.Context.AttemptID,
			Cwd:           invocation.Context.Cwd,
			Env:           invocation.Context.Env,
		},
	})
	if err != nil {
		return domain.Outcome{}, s.callError("run "+invocation.CommandID, callCtx, err)
	}
	return domain.Outcome{
		Stdout:     response.Stdout,
		Stderr:     response.Stderr,
		OutputJSON: response.OutputJSON,
		ExitCode:   int(response.ExitCode),
	}, nil
}

func (s *grpcSession) Close() {
	s.client.Kill()
}

func (s *grpcSession) callError(op string, callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s", domain.ErrPluginTimeout, s.name, op)
	}
	return fmt.Errorf("plugin %s %s: %w", s.name, op, err)
}

// callContext keeps a caller deadline when there is one.
func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// pluginLogWriter forwards go-plugin's hclog lines, including the plugin's
// own stderr, into the application logger.
type pluginLogWriter struct {
	logger logging.Logger
	plugin string
}

func (w pluginLogWriter) Write(p []byte) (int, error) {
	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.logger.Debug("analytics plugin", "plugin", w.plugin, "line", line)
		}
	}
	return len(p), nil
}
