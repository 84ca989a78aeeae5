package dto

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type CommandInfo struct {
	ID              string
	Title           string
	Description     string
	Kind            string
	InputSchemaJSON string
	TimeoutMS       int
}

type RunInput struct {
	Plugin    string
	CommandID string
	InputJSON string
	AthleteID string
	AttemptID string
	Cwd       string
	Env       map[string]string
}

type RunOutput struct {
	Plugin     string
	CommandID  string
	Stdout     string
	Stderr     string
	OutputJSON string
	ExitCode   int
}

type PercentileInput struct {
	Plugin   string
	TestName string
	Category string
	Score    float64
	Unit     string
}

type PercentileOutput struct {
	Plugin     string
	Percentile int
	Source     string
}
