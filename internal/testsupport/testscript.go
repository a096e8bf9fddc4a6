package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	cadPath   string
	buildErr  error
)

// BuildCad builds the cad binary once and returns its path.
func BuildCad(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "cad-bin-")
		if err != nil {
			buildErr = err
			return
		}

		cadPath = filepath.Join(binDir, "cad")
		cmd := exec.Command("go", "build", "-o", cadPath, "./cmd/cad")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build cad: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return cadPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("CAD", BuildCad(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdEntityID finds a task or review item by description or title in a JSON
// list and stores its ID in an env var.
func CmdEntityID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("entityid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: entityid FILE LABEL VAR")
	}

	var items []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Title       string `json:"title"`
	}
	data := ts.ReadFile(args[0])
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		ts.Fatalf("parse list: %v", err)
	}

	label := args[1]
	for _, item := range items {
		if item.Description == label || item.Title == label {
			ts.Setenv(args[2], item.ID)
			return
		}
	}

	ts.Fatalf("entity %q not found", label)
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
