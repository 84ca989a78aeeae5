package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	analyticsrpc "fitlab/internal/modules/analytics/adapter/out/rpc"
	"fitlab/internal/modules/analytics/domain"

	"github.com/hashicorp/go-plugin"
)

type band struct {
	Threshold  float64 `json:"threshold"`
	Percentile int     `json:"percentile"`
}

// norm ranks a score against descending bands. For lower-is-better tests
// the bands are ascending and a score ranks when it is at or below one.
type norm struct {
	LowerIsBetter bool   `json:"lower_is_better"`
	Bands         []band `json:"bands"`
	Floor         int    `json:"floor"`
}

func (n norm) rank(score float64) int {
	for _, b := range n.Bands {
		if (n.LowerIsBetter && score <= b.Threshold) || (!n.LowerIsBetter && score >= b.Threshold) {
			return b.Percentile
		}
	}
	return n.Floor
}

var norms = map[string]norm{
	"speed": {LowerIsBetter: true, Floor: 10, Bands: []band{
		{4.5, 95}, {5.0, 85}, {5.5, 70}, {6.0, 50}, {7.0, 30},
	}},
	"power": {Floor: 10, Bands: []band{
		{50, 95}, {40, 85}, {30, 70}, {20, 50}, {10, 30},
	}},
	"strength": {Floor: 10, Bands: []band{
		{40, 95}, {30, 85}, {20, 70}, {15, 50}, {10, 30},
	}},
	"core": {Floor: 10, Bands: []band{
		{180, 95}, {120, 85}, {90, 70}, {60, 50}, {30, 30},
	}},
	"agility": {LowerIsBetter: true, Floor: 10, Bands: []band{
		{10, 95}, {11, 85}, {12, 70}, {13, 50}, {14, 30},
	}},
}

const fallbackPercentile = 50

type server struct{}

func (s *server) Describe(_ context.Context, _ *analyticsrpc.Empty) (*analyticsrpc.Metadata, error) {
	return &analyticsrpc.Metadata{
		Name:         "norms",
		Version:      "1.0.0",
		Capabilities: []string{"command", "analyze"},
	}, nil
}

func (s *server) ListCommands(_ context.Context, _ *analyticsrpc.Empty) (*analyticsrpc.ListCommandsResponse, error) {
	return &analyticsrpc.ListCommandsResponse{Commands: []analyticsrpc.CommandDescriptor{
		{ID: domain.PercentileCommand, Title: "Percentile", Description: "Ranks a score against population norms", Kind: "analyze", TimeoutMS: 2000},
		{ID: "norms", Title: "Norms", Description: "Prints the norm bands for a category", Kind: "command", TimeoutMS: 1000},
	}}, nil
}

func (s *server) Run(_ context.Context, in *analyticsrpc.RunRequest) (*analyticsrpc.RunResponse, error) {
	switch in.CommandID {
	case domain.PercentileCommand:
		var req domain.PercentileRequest
		if err := json.Unmarshal([]byte(in.InputJSON), &req); err != nil {
			return &analyticsrpc.RunResponse{Stderr: fmt.Sprintf("decode request: %v", err), ExitCode: 2}, nil
		}
		answer := domain.PercentileAnswer{Percentile: fallbackPercentile, Source: "default"}
		if n, ok := norms[strings.ToLower(req.Category)]; ok {
			answer = domain.PercentileAnswer{Percentile: n.rank(req.Score), Source: "norms/" + strings.ToLower(req.Category)}
		}
		raw, err := json.Marshal(answer)
		if err != nil {
			return nil, err
		}
		return &analyticsrpc.RunResponse{Stdout: fmt.Sprintf("percentile %d", answer.Percentile), OutputJSON: string(raw)}, nil
	case "norms":
		var req struct {
			Category string `json:"category"`
		}
		if strings.TrimSpace(in.InputJSON) != "" {
			if err := json.Unmarshal([]byte(in.InputJSON), &req); err != nil {
				return &analyticsrpc.RunResponse{Stderr: fmt.Sprintf("decode request: %v", err), ExitCode: 2}, nil
			}
		}
		var payload any = norms
		if req.Category != "" {
			n, ok := norms[strings.ToLower(req.Category)]
			if !ok {
				return &analyticsrpc.RunResponse{Stderr: "no norms for " + req.Category, ExitCode: 1}, nil
			}
			payload = n
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		return &analyticsrpc.RunResponse{Stdout: string(raw), OutputJSON: string(raw)}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", in.CommandID)
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: analyticsrpc.HandshakeConfig,
		Plugins:         analyticsrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
