package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	apperrors "fitlab/internal/platform/errors"
)

type Capability string

const (
	CapabilityCommand Capability = "command"
	CapabilityAnalyze Capability = "analyze"
)

var (
	ErrPluginNotFound    = fmt.Errorf("%w: analytics plugin", apperrors.ErrNotFound)
	ErrCommandNotFound   = fmt.Errorf("%w: plugin command", apperrors.ErrNotFound)
	ErrPluginDisabled    = errors.New("plugin is disabled")
	ErrChecksumMismatch  = errors.New("plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("plugin capability missing")
	ErrPluginTimeout     = errors.New("plugin timeout")
	ErrCommandFailed     = errors.New("plugin command failed")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest is one entry of the workspace plugin registry.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin %s: version is required", m.Name)
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin %s: binary path is required", m.Name)
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin %s: sha256 must be lowercase 64-char hex", m.Name)
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin %s: capabilities are required", m.Name)
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("plugin %s: duplicate capability %s", m.Name, capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityCommand, CapabilityAnalyze:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	return slices.Contains(m.Capabilities, capability)
}

type CommandKind string

const (
	CommandKindCommand CommandKind = "command"
	CommandKindAnalyze CommandKind = "analyze"
)

func (k CommandKind) Validate() error {
	switch k {
	case CommandKindCommand, CommandKindAnalyze:
		return nil
	default:
		return fmt.Errorf("unknown command kind: %s", k)
	}
}

// Capability is the manifest capability a command of this kind needs.
func (k CommandKind) Capability() Capability {
	if k == CommandKindAnalyze {
		return CapabilityAnalyze
	}
	return CapabilityCommand
}

type CommandDescriptor struct {
	ID              string
	Title           string
	Description     string
	Kind            CommandKind
	InputSchemaJSON string
	TimeoutMS       int
}

func (d CommandDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("command id is required")
	}
	return d.Kind.Validate()
}

// Timeout is the declared command budget, or fallback when none is declared.
func (d CommandDescriptor) Timeout(fallback time.Duration) time.Duration {
	if d.TimeoutMS <= 0 {
		return fallback
	}
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

type InvocationContext struct {
	WorkspacePath string
	AthleteID     string
	AttemptID     string
	Cwd           string
	Env           map[string]string
}

func (c InvocationContext) Validate() error {
	if c.WorkspacePath == "" {
		return fmt.Errorf("workspace path is required")
	}
	if c.Cwd == "" {
		return fmt.Errorf("cwd is required")
	}
	return nil
}

type Invocation struct {
	CommandID string
	InputJSON string
	Context   InvocationContext
}

func (i Invocation) Validate() error {
	if i.CommandID == "" {
		return fmt.Errorf("command id is required")
	}
	return i.Context.Validate()
}

type Outcome struct {
	Stdout     string
	Stderr     string
	OutputJSON string
	ExitCode   int
}
