package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"fitlab/internal/modules/analytics/domain"
	"fitlab/internal/modules/analytics/dto"
	analyticsout "fitlab/internal/modules/analytics/port/out"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/logging"

	"github.com/spf13/afero"
)

const defaultCommandTimeout = 5 * time.Second

type AnalyticsService struct {
	store     analyticsout.ManifestStore
	host      analyticsout.Host
	fs        afero.Fs
	workspace string
	logger    logging.Logger
}

// NewAnalyticsService verifies binaries through fs before handing them
// to host. A nil host limits the service to List and Doctor without
// lifecycle checks.
func NewAnalyticsService(store analyticsout.ManifestStore, host analyticsout.Host, fs afero.Fs, workspace string, logger logging.Logger) *AnalyticsService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AnalyticsService{store: store, host: host, fs: fs, workspace: workspace, logger: logger}
}

func (s *AnalyticsService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *AnalyticsService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		results = append(results, s.diagnose(ctx, m))
	}
	return results, nil
}

func (s *AnalyticsService) diagnose(ctx context.Context, m domain.Manifest) dto.DoctorResult {
	result := dto.DoctorResult{Name: m.Name}
	if err := m.Validate(); err != nil {
		result.Error = err.Error()
		return result
	}
	if exists, _ := afero.Exists(s.fs, m.Binary); !exists {
		result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		return result
	}
	result.BinaryReachable = true
	if err := s.verifyChecksum(m); err != nil {
		result.Error = err.Error()
		return result
	}
	result.ChecksumValid = true
	if !m.Enabled || s.host == nil {
		return result
	}
	session, err := s.host.Connect(ctx, m)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer session.Close()
	if _, err := session.Metadata(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	result.LifecycleOK = true
	return result
}

func (s *AnalyticsService) ListCommands(ctx context.Context, plugin string) ([]dto.CommandInfo, error) {
	session, err := s.open(ctx, plugin, "")
	if err != nil {
		return nil, err
	}
	defer session.Close()
	commands, err := session.Commands(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommandInfo, 0, len(commands))
	for _, command := range commands {
		out = append(out, dto.CommandInfo{
			ID:              command.ID,
			Title:           command.Title,
			Description:     command.Description,
			Kind:            string(command.Kind),
			InputSchemaJSON: command.InputSchemaJSON,
			TimeoutMS:       command.TimeoutMS,
		})
	}
	return out, nil
}

func (s *AnalyticsService) Execute(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return s.run(ctx, input, domain.CommandKindCommand)
}

func (s *AnalyticsService) Analyze(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return s.run(ctx, input, domain.CommandKindAnalyze)
}

// Percentile asks plugin's percentile analyzer where a score ranks.
func (s *AnalyticsService) Percentile(ctx context.Context, input dto.PercentileInput) (dto.PercentileOutput, error) {
	payload, err := json.Marshal(domain.PercentileRequest{
		TestName: input.TestName,
		Category: input.Category,
		Score:    input.Score,
		Unit:     input.Unit,
	})
	if err != nil {
		return dto.PercentileOutput{}, fmt.Errorf("encode percentile request: %w", err)
	}
	out, err := s.Analyze(ctx, dto.RunInput{Plugin: input.Plugin, CommandID: domain.PercentileCommand, InputJSON: string(payload)})
	if err != nil {
		return dto.PercentileOutput{}, err
	}
	if out.ExitCode != 0 {
		return dto.PercentileOutput{}, fmt.Errorf("%w: %s exited %d: %s", domain.ErrCommandFailed, domain.PercentileCommand, out.ExitCode, out.Stderr)
	}
	var answer domain.PercentileAnswer
	if err := json.Unmarshal([]byte(out.OutputJSON), &answer); err != nil {
		return dto.PercentileOutput{}, fmt.Errorf("decode percentile answer: %w", err)
	}
	if err := answer.Validate(); err != nil {
		return dto.PercentileOutput{}, fmt.Errorf("plugin %s: %w", input.Plugin, err)
	}
	return dto.PercentileOutput{Plugin: input.Plugin, Percentile: answer.Percentile, Source: answer.Source}, nil
}

func (s *AnalyticsService) run(ctx context.Context, input dto.RunInput, kind domain.CommandKind) (dto.RunOutput, error) {
	if input.InputJSON != "" && !json.Valid([]byte(input.InputJSON)) {
		return dto.RunOutput{}, fmt.Errorf("%w: input json must be valid JSON", apperrors.ErrInvalidInput)
	}
	cwd := input.Cwd
	if cwd == "" {
		cwd = s.workspace
	}
	invocation := domain.Invocation{
		CommandID: input.CommandID,
		InputJSON: input.InputJSON,
		Context: domain.InvocationContext{
			WorkspacePath: s.workspace,
			AthleteID:     input.AthleteID,
			AttemptID:     input.AttemptID,
			Cwd:           cwd,
			Env:           input.Env,
		},
	}
	if err := invocation.Validate(); err != nil {
		return dto.RunOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	session, err := s.open(ctx, input.Plugin, kind.Capability())
	if err != nil {
		return dto.RunOutput{}, err
	}
	defer session.Close()
	commands, err := session.Commands(ctx)
	if err != nil {
		return dto.RunOutput{}, err
	}
	command, err := requireCommand(commands, input.CommandID, kind)
	if err != nil {
		return dto.RunOutput{}, err
	}

	outcome, err := session.Run(ctx, invocation, command.Timeout(defaultCommandTimeout))
	if err != nil {
		return dto.RunOutput{}, err
	}
	s.logger.Debug("plugin command finished", "plugin", input.Plugin, "command", input.CommandID, "exit_code", outcome.ExitCode)
	return dto.RunOutput{
		Plugin:     input.Plugin,
		CommandID:  input.CommandID,
		Stdout:     outcome.Stdout,
		Stderr:     outcome.Stderr,
		OutputJSON: outcome.OutputJSON,
		ExitCode:   outcome.ExitCode,
	}, nil
}

func (s *AnalyticsService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

// open verifies the named plugin and starts a session with it.
func (s *AnalyticsService) open(ctx context.Context, plugin string, required domain.Capability) (analyticsout.Session, error) {
	if s.host == nil {
		return nil, fmt.Errorf("analytics plugins are not available")
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	var manifest domain.Manifest
	found := false
	for _, item := range manifests {
		if item.Name == plugin {
			manifest, found = item, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", domain.ErrPluginNotFound, plugin)
	}
	if !manifest.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, plugin)
	}
	if required != "" && !manifest.HasCapability(required) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, required)
	}
	if err := s.verifyChecksum(manifest); err != nil {
		return nil, err
	}
	session, err := s.host.Connect(ctx, manifest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, plugin)
		}
		return nil, err
	}
	return session, nil
}

func requireCommand(commands []domain.CommandDescriptor, commandID string, kind domain.CommandKind) (domain.CommandDescriptor, error) {
	for _, command := range commands {
		if err := command.Validate(); err != nil {
			return domain.CommandDescriptor{}, err
		}
		if command.ID != commandID {
			continue
		}
		if command.Kind != kind {
			return domain.CommandDescriptor{}, fmt.Errorf("command %s: kind mismatch: want=%s got=%s", commandID, kind, command.Kind)
		}
		return command, nil
	}
	return domain.CommandDescriptor{}, fmt.Errorf("%w: %s", domain.ErrCommandNotFound, commandID)
}

func (s *AnalyticsService) verifyChecksum(m domain.Manifest) error {
	payload, err := afero.ReadFile(s.fs, m.Binary)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != m.SHA256 {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(m.Binary))
	}
	return nil
}
