package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey  = "fitlab"
	serviceName   = "fitlab.analytics.v1.AnalyticsPlugin"
	jsonCodecName = "json"

	methodDescribe     = "Describe"
	methodListCommands = "ListCommands"
	methodRun          = "Run"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FITLAB_ANALYTICS_PLUGIN",
	MagicCookieValue: "fitlab",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type CommandDescriptor struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Kind            string `json:"kind"`
	InputSchemaJSON string `json:"input_schema_json"`
	TimeoutMS       int32  `json:"timeout_ms"`
}

type ListCommandsResponse struct {
	Commands []CommandDescriptor `json:"commands"`
}

type InvocationContext struct {
	WorkspacePath string            `json:"workspace_path"`
	AthleteID     string            `json:"athlete_id"`
	AttemptID     string            `json:"attempt_id"`
	Cwd           string            `json:"cwd"`
	Env           map[string]string `json:"env"`
}

type RunRequest struct {
	CommandID string            `json:"command_id"`
	InputJSON string            `json:"input_json"`
	Context   InvocationContext `json:"context"`
}

type RunResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	OutputJSON string `json:"output_json"`
	ExitCode   int32  `json:"exit_code"`
}

type AnalyticsPluginServer interface {
	Describe(ctx context.Context, in *Empty) (*Metadata, error)
	ListCommands(ctx context.Context, in *Empty) (*ListCommandsResponse, error)
	Run(ctx context.Context, in *RunRequest) (*RunResponse, error)
}

type AnalyticsPluginClient interface {
	Describe(ctx context.Context) (*Metadata, error)
	ListCommands(ctx context.Context) (*ListCommandsResponse, error)
	Run(ctx context.Context, in *RunRequest) (*RunResponse, error)
}

type analyticsPluginClient struct {
	conn *grpc.ClientConn
}

func NewAnalyticsPluginClient(conn *grpc.ClientConn) AnalyticsPluginClient {
	return &analyticsPluginClient{conn: conn}
}

func (c *analyticsPluginClient) Describe(ctx context.Context) (*Metadata, error) {
	return invoke[Metadata](ctx, c.conn, methodDescribe, &Empty{})
}

func (c *analyticsPluginClient) ListCommands(ctx context.Context) (*ListCommandsResponse, error) {
	return invoke[ListCommandsResponse](ctx, c.conn, methodListCommands, &Empty{})
}

func (c *analyticsPluginClient) Run(ctx context.Context, in *RunRequest) (*RunResponse, error) {
	return invoke[RunResponse](ctx, c.conn, methodRun, in)
}

func invoke[Resp any](ctx context.Context, conn *grpc.ClientConn, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := conn.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// unary adapts a typed handler to grpc's untyped method table.
func unary[Req, Resp any](method string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("%s: unexpected request type %T", method, req)
				}
				return call(ctx, typed)
			})
		},
	}
}

func RegisterAnalyticsPluginServer(server grpc.ServiceRegistrar, impl AnalyticsPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*AnalyticsPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			unary(methodDescribe, impl.Describe),
			unary(methodListCommands, impl.ListCommands),
			unary(methodRun, impl.Run),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/analytics-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl AnalyticsPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterAnalyticsPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewAnalyticsPluginClient(conn), nil
}

func PluginMap(impl AnalyticsPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
