package evals

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// Store brokers read access to the run artifacts the evaluation runner
// persists on disk. The gateway does not own this storage; it only lists
// and serves what the runner wrote, keyed by eval_run_id.
type Store struct {
	dir    string
	logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// SafeRunID validates a caller-supplied run id before it is used to build a
// filesystem path. This is the one boundary where caller strings touch the
// filesystem directly, so path separators and NUL are rejected outright.
func SafeRunID(raw string) (string, *api.Problem) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", api.BadRequestError("eval_run_id is required")
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return "", api.BadRequestError("Invalid eval_run_id")
	}
	return s, nil
}

// List returns up to limit run summaries, newest first by file mtime.
// Summaries that cannot be read or parsed are skipped, not fatal.
func (s *Store) List(limit int) ([]map[string]interface{}, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, api.ServiceUnavailableError("cannot access eval runs dir: " + err.Error())
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, "*_summary.json"))
	if err != nil {
		return nil, api.ServiceUnavailableError("cannot list eval runs: " + err.Error())
	}

	type entry struct {
		path    string
		modTime time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		entries = append(entries, entry{path: m, modTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(e.path)
		if err != nil {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
			s.logger.Debug("skipping unreadable eval summary", zap.String("path", e.path))
			continue
		}
		if _, ok := obj["summary_path"]; !ok {
			obj["summary_path"] = e.path
		}
		out = append(out, obj)
	}

	return out, nil
}

// Summary returns the persisted summary document for one run.
func (s *Store) Summary(runID string) (json.RawMessage, error) {
	rid, problem := SafeRunID(runID)
	if problem != nil {
		return nil, problem
	}

	data, err := os.ReadFile(filepath.Join(s.dir, rid+"_summary.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, api.NotFoundError("Eval summary not found")
		}
		return nil, api.NewProblem(http.StatusInternalServerError, "Internal Server Error", "cannot read eval summary", api.WithLog(err))
	}

	if !json.Valid(data) {
		return nil, api.NewProblem(http.StatusInternalServerError, "Internal Server Error", "Eval summary is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// JSONLPath returns the on-disk path of a run's detail log, validating the
// id and the file's existence.
func (s *Store) JSONLPath(runID string) (string, error) {
	rid, problem := SafeRunID(runID)
	if problem != nil {
		return "", problem
	}

	path := filepath.Join(s.dir, rid+".jsonl")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", api.NotFoundError("Eval jsonl not found")
		}
		return "", api.NewProblem(http.StatusInternalServerError, "Internal Server Error", "cannot read eval jsonl", api.WithLog(err))
	}
	return path, nil
}
