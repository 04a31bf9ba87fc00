package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/workerctl/internal/command"
	"github.com/danmuck/workerctl/internal/config"
	"github.com/danmuck/workerctl/internal/launch"
	"github.com/danmuck/workerctl/internal/observability"
	"github.com/danmuck/workerctl/internal/script"
	"github.com/danmuck/workerctl/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultScriptName is the script file stem used when no script path is
// configured; the emitter's extension is appended.
const DefaultScriptName = "run_mcp_all_silent"

var (
	ErrMissingPath   = errors.New("service: missing path")
	ErrScriptWrite   = errors.New("service: script write failed")
	ErrInvalidSettle = errors.New("service: invalid settle interval")
)

// Config holds the injected paths and launch tuning for one run.
type Config struct {
	RuntimeConfigPath string
	LaunchConfigPath  string
	// ScriptPath defaults to DefaultScriptName plus the extension of the
	// selected format when empty.
	ScriptPath   string
	ScriptFormat script.Format
	// Interpreter overrides the emitter's interpreter; the script path is
	// appended as the last argument.
	Interpreter     []string
	Settle          time.Duration
	ProcessMatch    string
	MetricsTextfile string
}

func DefaultConfig() Config {
	return Config{
		RuntimeConfigPath: "mcp_config.json",
		LaunchConfigPath:  "mcp_server_plugin.json",
		ScriptFormat:      script.FormatAuto,
		Settle:            launch.DefaultSettle,
		ProcessMatch:      launch.DefaultMatch,
	}
}

// Validate checks the fields a run cannot proceed without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RuntimeConfigPath) == "" {
		return fmt.Errorf("%w: runtime_config", ErrMissingPath)
	}
	if strings.TrimSpace(c.LaunchConfigPath) == "" {
		return fmt.Errorf("%w: launch_config", ErrMissingPath)
	}
	if c.Settle < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSettle, c.Settle)
	}
	return nil
}

// Service runs the load, synthesize, emit, launch pipeline once per Run.
type Service struct {
	cfg     Config
	emitter script.Emitter
	starter tools.ProcessStarter
	lister  launch.Lister
}

// Option replaces a host-facing dependency.
type Option func(*Service)

func WithStarter(starter tools.ProcessStarter) Option {
	return func(s *Service) { s.starter = starter }
}

func WithLister(lister launch.Lister) Option {
	return func(s *Service) { s.lister = lister }
}

func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emitter, err := script.ForFormat(cfg.ScriptFormat)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.ScriptPath) == "" {
		cfg.ScriptPath = DefaultScriptName + emitter.Extension()
	}
	runner := tools.ExecRunner{}
	s := &Service{
		cfg:     cfg,
		emitter: emitter,
		starter: runner,
		lister:  launch.DefaultLister(runner),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ScriptPath is the resolved path the launch script is written to.
func (s *Service) ScriptPath() string {
	return s.cfg.ScriptPath
}

// Result is everything one run produced.
type Result struct {
	RunID      string
	Plan       command.Plan
	ScriptPath string
	Script     string
	Report     launch.Report
}

// Plan loads both definition files and synthesizes commands without writing
// or launching anything.
func (s *Service) Plan() (command.Plan, error) {
	runtimeDefs, err := config.LoadRuntimeDefinitions(s.cfg.RuntimeConfigPath)
	if err != nil {
		return command.Plan{}, err
	}
	launchDefs, err := config.LoadLaunchDefinitions(s.cfg.LaunchConfigPath)
	if err != nil {
		return command.Plan{}, err
	}
	return command.SynthesizeAll(runtimeDefs, launchDefs), nil
}

// Render returns the script text for plan.
func (s *Service) Render(plan command.Plan) string {
	return s.emitter.Emit(plan.Lines())
}

// Run executes the pipeline. Config load and script write failures abort
// before anything is launched; process enumeration failures land in the
// report.
func (s *Service) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString(), ScriptPath: s.cfg.ScriptPath}
	logger := log.With().Str("run_id", result.RunID).Logger()

	plan, err := s.Plan()
	if err != nil {
		logger.Error().Err(err).Msg("service.Service.Run config load failed")
		return result, err
	}
	result.Plan = plan
	s.recordPlan(plan)
	logger.Info().
		Int("commands", len(plan.Commands)).
		Int("skipped", len(plan.Skipped)).
		Msg("service.Service.Run synthesized")

	result.Script = s.Render(plan)
	if err := writeScript(s.cfg.ScriptPath, result.Script); err != nil {
		logger.Error().Err(err).Str("script", s.cfg.ScriptPath).Msg("service.Service.Run script write failed")
		return result, err
	}
	logger.Info().Str("script", s.cfg.ScriptPath).Str("format", string(s.emitter.Format())).Msg("service.Service.Run script written")

	coordinator := &launch.Coordinator{
		Interpreter: s.interpreter(),
		Starter:     s.starter,
		Lister:      s.lister,
		Settle:      s.cfg.Settle,
		Match:       s.cfg.ProcessMatch,
	}
	report, err := coordinator.Launch(ctx, s.cfg.ScriptPath, len(plan.Commands))
	result.Report = report
	if err != nil {
		return result, err
	}
	if report.Executed {
		observability.RecordLaunch(len(report.WorkerPIDs), report.Settled, report.EnumerationErr != nil)
	}
	s.flushMetrics(result.RunID)
	return result, nil
}

func (s *Service) interpreter() launch.Interpreter {
	if len(s.cfg.Interpreter) == 0 {
		return s.emitter
	}
	override := append([]string(nil), s.cfg.Interpreter...)
	return launch.InterpreterFunc(func(scriptPath string) (string, []string) {
		args := append(append([]string(nil), override[1:]...), scriptPath)
		return override[0], args
	})
}

func (s *Service) recordPlan(plan command.Plan) {
	for range plan.Commands {
		observability.RecordWorker(observability.OutcomeLaunched)
	}
	for _, skip := range plan.Skipped {
		observability.RecordWorker(string(skip.Reason))
	}
}

func (s *Service) flushMetrics(runID string) {
	if s.cfg.MetricsTextfile == "" {
		return
	}
	observability.RecordRun(runID, time.Now())
	if err := observability.WriteTextfile(s.cfg.MetricsTextfile); err != nil {
		log.Warn().Err(err).Str("path", s.cfg.MetricsTextfile).Msg("service.Service.flushMetrics skipped")
	}
}

func writeScript(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w (%s): %v", ErrScriptWrite, path, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrScriptWrite, path, err)
	}
	return nil
}
