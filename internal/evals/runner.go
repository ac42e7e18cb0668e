package evals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/internal/config"
	"github.com/caiatech/dashboard-api/pkg/api"
)

// RunnerUpstream is the pseudo-upstream name the evaluation runner appears
// under in error envelopes.
const RunnerUpstream = "caiatech-eval-service"

const runnerModule = "caiatech_eval_service.runner"

// Runner spawns the evaluation service as a synchronous child process and
// validates its stdout as the run result.
type Runner struct {
	serviceDir          string
	runsDir             string
	pythonBin           string
	registryURL         string
	registryKey         string
	defaultInferenceURL string
	timeout             time.Duration
	logger              *zap.Logger
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		serviceDir:          cfg.Eval.ServiceDir,
		runsDir:             cfg.Eval.RunsDir,
		pythonBin:           cfg.Eval.PythonBin,
		registryURL:         cfg.Registry.URL,
		registryKey:         cfg.Registry.APIKey,
		defaultInferenceURL: cfg.OnyxAPI.URL,
		timeout:             time.Duration(cfg.Eval.TimeoutSeconds * float64(time.Second)),
		logger:              logger,
	}
}

// RunsDir is where the runner persists per-run artifacts.
func (r *Runner) RunsDir() string {
	return r.runsDir
}

// Health reports the runner installation state for the aggregate health
// endpoint.
func (r *Runner) Health() api.EvalHealth {
	info, err := os.Stat(r.serviceDir)
	return api.EvalHealth{
		EvalServiceDir:     r.serviceDir,
		EvalServicePresent: err == nil && info.IsDir(),
		EvalRunsDir:        r.runsDir,
	}
}

func (r *Runner) entryPointPresent() bool {
	_, err := os.Stat(filepath.Join(r.serviceDir, "caiatech_eval_service", "runner.py"))
	return err == nil
}

// Run executes one evaluation. The request must already be bound and
// suite-validated; Run still resolves the inference URL default, verifies
// the runner installation, and refuses to spawn without a registry key.
//
// The child is deliberately not bound to the inbound request's context:
// a disconnecting caller must not orphan a half-written run. When a
// wall-clock timeout is configured the child is killed on expiry.
func (r *Runner) Run(ctx context.Context, req api.EvalRunRequest) (map[string]interface{}, error) {
	inferenceURL := strings.TrimSpace(req.InferenceURL)
	if inferenceURL == "" {
		inferenceURL = r.defaultInferenceURL
	}
	if inferenceURL == "" {
		return nil, api.ValidationError(map[string]string{"inference_url": "required when no inference upstream is configured"})
	}

	if r.registryKey == "" {
		return nil, api.AuthNotConfigured(RunnerUpstream, "CAIA_REGISTRY_API_KEY")
	}

	if !r.entryPointPresent() {
		return nil, api.ServiceUnavailableError(
			fmt.Sprintf("Eval service not found at %s (set CAIA_EVAL_SERVICE_DIR)", r.serviceDir))
	}

	if err := os.MkdirAll(r.runsDir, 0o755); err != nil {
		return nil, api.ServiceUnavailableError(fmt.Sprintf("cannot create eval runs dir %s: %v", r.runsDir, err))
	}

	runCtx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, r.timeout)
		defer cancel()
	}

	args := r.buildArgs(req, inferenceURL)
	cmd := exec.CommandContext(runCtx, r.pythonBin, args...)
	cmd.Dir = r.serviceDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("starting evaluation run",
		zap.Int("model_id", *req.ModelID),
		zap.String("suite", req.Suite),
		zap.String("inference_url", inferenceURL),
	)

	startedAt := time.Now().UTC()
	err := cmd.Run()
	finishedAt := time.Now().UTC()

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, api.ExternalProcessTimeout(RunnerUpstream, r.timeout.Seconds())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Warn("evaluation runner failed",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.Duration("elapsed", finishedAt.Sub(startedAt)),
			)
			return nil, api.ExternalProcessError(RunnerUpstream, exitErr.ExitCode(), stdout.String(), stderr.String())
		}
		return nil, api.ServiceUnavailableError(fmt.Sprintf("failed to start evaluation runner: %v", err))
	}

	out := strings.TrimSpace(stdout.String())
	var parsed interface{}
	if jsonErr := json.Unmarshal([]byte(out), &parsed); jsonErr != nil {
		return nil, api.InvalidProcessOutput(RunnerUpstream, fmt.Sprintf("Invalid JSON on stdout: %v", jsonErr), out)
	}

	result, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, api.InvalidProcessOutput(RunnerUpstream, "Runner output is not a JSON object", out)
	}
	if id, ok := result["eval_run_id"].(string); !ok || id == "" {
		return nil, api.InvalidProcessOutput(RunnerUpstream, "Missing eval_run_id", out)
	}

	result["started_at"] = startedAt.Format(time.RFC3339Nano)
	result["finished_at"] = finishedAt.Format(time.RFC3339Nano)

	r.logger.Info("evaluation run finished",
		zap.Any("eval_run_id", result["eval_run_id"]),
		zap.Duration("elapsed", finishedAt.Sub(startedAt)),
	)

	return result, nil
}

// buildArgs renders the runner invocation: fixed flags first, then the
// optional tuning knobs in a stable order, only when the caller set them.
func (r *Runner) buildArgs(req api.EvalRunRequest, inferenceURL string) []string {
	args := []string{
		"-m", runnerModule,
		"--registry-url", r.registryURL,
		"--api-key", r.registryKey,
		"--suite", req.Suite,
		"--model-id", strconv.Itoa(*req.ModelID),
		"--inference-url", inferenceURL,
		"--eval-runs-dir", r.runsDir,
	}

	if req.TimeoutSeconds != nil {
		args = append(args, "--timeout-seconds", formatNumber(*req.TimeoutSeconds))
	}
	if req.Retries != nil {
		args = append(args, "--retries", strconv.Itoa(*req.Retries))
	}
	if req.BackoffSeconds != nil {
		args = append(args, "--backoff-seconds", formatNumber(*req.BackoffSeconds))
	}
	if req.MaxTokens != nil {
		args = append(args, "--max-tokens", strconv.Itoa(*req.MaxTokens))
	}
	if req.Temperature != nil {
		args = append(args, "--temperature", formatNumber(*req.Temperature))
	}

	return args
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
