// Package manim runs generated scripts through the Manim CLI without
// blocking the UI-owning loop.
package manim

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OutputFormat selects the artifact kind a render produces.
type OutputFormat string

const (
	OutputImage OutputFormat = "image"
	OutputVideo OutputFormat = "video"
)

// Request describes one render invocation.
type Request struct {
	Script       string
	SceneName    string
	QualityFlags []string
	Format       OutputFormat
}

// Result is the single completion value for a render request. On image
// success Image holds the PNG bytes; on video success ArtifactPath is the
// absolute output path. Message carries the failure diagnostic, or a
// warning retained on success (e.g. multiple artifact matches).
type Result struct {
	OK           bool
	Image        []byte
	ArtifactPath string
	Message      string
}

// Runner executes render requests, one background goroutine per request.
// Requests are user-paced; no pooling or mutual exclusion is applied, so
// overlapping requests may complete in any order.
type Runner struct {
	// Bin and Args form the engine invocation prefix, e.g. python -m manim.
	Bin  string
	Args []string

	// WorkDir is the engine's working directory and the root of the media/
	// tree searched for artifacts.
	WorkDir string

	// ScriptDir holds the transient script files for this process.
	ScriptDir string

	// Schedule marshals a completion onto the UI-owning context. The host
	// shell supplies it; nil invokes inline (tests).
	Schedule func(func())

	// Command builds the engine command for a script. Tests substitute a
	// fake engine here; the default uses Bin and Args.
	Command func(scriptPath, sceneName string, flags []string) *exec.Cmd
}

// NewRunner creates a Runner whose script files live in a fresh
// process-lifetime temp directory.
func NewRunner(bin string, args []string, workDir string) (*Runner, error) {
	scriptDir, err := os.MkdirTemp("", "manimstudio_scripts_")
	if err != nil {
		return nil, fmt.Errorf("create script dir: %w", err)
	}
	return &Runner{Bin: bin, Args: args, WorkDir: workDir, ScriptDir: scriptDir}, nil
}

// RenderAsync writes the script to a transient file, runs the engine in the
// background and delivers exactly one Result through Schedule. It never
// returns an error: setup failures take the same completion path as engine
// failures, so callers have a single outcome channel to handle.
func (r *Runner) RenderAsync(req Request, done func(Result)) {
	scriptPath, err := r.writeScript(req.Script)
	if err != nil {
		r.deliver(done, Result{OK: false, Message: fmt.Sprintf("render setup failed: %v", err)})
		return
	}
	go r.run(scriptPath, req, done)
}

func (r *Runner) writeScript(content string) (string, error) {
	f, err := os.CreateTemp(r.ScriptDir, "scene_*.py")
	if err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close script file: %w", err)
	}
	return f.Name(), nil
}

// run executes in the background goroutine. The script file is removed in
// the deferred cleanup no matter how the render went; cleanup failure does
// not block the completion callback.
func (r *Runner) run(scriptPath string, req Request, done func(Result)) {
	defer os.Remove(scriptPath)

	cmd := r.buildCommand(scriptPath, req.SceneName, req.QualityFlags)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{}
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = strings.TrimSpace(stdout.String())
			}
			res.Message = fmt.Sprintf("Manim failed (code %d): %s", exitErr.ExitCode(), detail)
		} else {
			res.Message = fmt.Sprintf("Manim could not be started: %v", err)
		}
		r.deliver(done, res)
		return
	}

	// Exit code 0 is necessary but not sufficient: the artifact has to be
	// discoverable under the media tree.
	switch req.Format {
	case OutputVideo:
		res = r.collectVideo(scriptPath, req.SceneName)
	default:
		res = r.collectImage(scriptPath, req.SceneName)
	}
	r.deliver(done, res)
}

func (r *Runner) buildCommand(scriptPath, sceneName string, flags []string) *exec.Cmd {
	if r.Command != nil {
		cmd := r.Command(scriptPath, sceneName, flags)
		if cmd.Dir == "" {
			cmd.Dir = r.WorkDir
		}
		return cmd
	}
	args := append(append([]string{}, r.Args...), scriptPath, sceneName)
	args = append(args, flags...)
	cmd := exec.Command(r.Bin, args...)
	cmd.Dir = r.WorkDir
	return cmd
}

// collectImage locates media/images/<script_stem>/<scene>*.png and returns
// its bytes.
func (r *Runner) collectImage(scriptPath, sceneName string) Result {
	stem := scriptStem(scriptPath)
	pattern := filepath.Join(r.WorkDir, "media", "images", stem, sceneName+"*.png")
	match, warn, err := pickArtifact(pattern)
	if err != nil {
		return Result{OK: false, Message: err.Error()}
	}
	data, err := os.ReadFile(match)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("render succeeded but output PNG is unreadable: %v", err)}
	}
	return Result{OK: true, Image: data, ArtifactPath: match, Message: warn}
}

// collectVideo locates media/videos/<script_stem>/<quality>/<scene>.mp4
// under any quality subdirectory and returns its absolute path.
func (r *Runner) collectVideo(scriptPath, sceneName string) Result {
	stem := scriptStem(scriptPath)
	pattern := filepath.Join(r.WorkDir, "media", "videos", stem, "*", sceneName+".mp4")
	match, warn, err := pickArtifact(pattern)
	if err != nil {
		return Result{OK: false, Message: err.Error()}
	}
	abs, err := filepath.Abs(match)
	if err != nil {
		abs = match
	}
	return Result{OK: true, ArtifactPath: abs, Message: warn}
}

// pickArtifact globs for the expected artifact. No match is a failure even
// after a clean exit; multiple matches pick the first in sorted order and
// carry a warning.
func pickArtifact(pattern string) (string, string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", "", fmt.Errorf("artifact search failed for %s: %v", pattern, err)
	}
	if len(matches) == 0 {
		return "", "", fmt.Errorf("render succeeded (code 0) but no artifact matched %s", pattern)
	}
	sort.Strings(matches)
	warn := ""
	if len(matches) > 1 {
		warn = fmt.Sprintf("%d artifacts matched %s; using %s", len(matches), pattern, matches[0])
	}
	return matches[0], warn, nil
}

func scriptStem(scriptPath string) string {
	base := filepath.Base(scriptPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *Runner) deliver(done func(Result), res Result) {
	if r.Schedule != nil {
		r.Schedule(func() { done(res) })
		return
	}
	done(res)
}
