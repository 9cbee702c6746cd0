package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// manifestMarker prefixes the single stdout line carrying the manifest, so
// anything the project prints while booting is ignored.
const manifestMarker = "AUTOAPI_MANIFEST:"

// ErrNoManifest is returned when the introspection script printed no manifest.
var ErrNoManifest = errors.New("no manifest in introspection output")

const introspectScript = `
import json
from django.apps import apps

out = []
for app in apps.get_app_configs():
    models = []
    for m in app.get_models():
        fields = []
        for f in m._meta.get_fields():
            fields.append({
                "name": f.name,
                "type": f.__class__.__name__,
                "auto_created": bool(getattr(f, "auto_created", False)),
                "concrete": bool(getattr(f, "concrete", False)),
            })
        models.append({"name": m.__name__, "fields": fields})
    out.append({"label": app.label, "name": app.name, "path": app.path, "models": models})
print("` + manifestMarker + `" + json.dumps({"apps": out}))
`

// Options controls how a project is introspected.
type Options struct {
	Python     string
	ProjectDir string
	Settings   string // optional DJANGO_SETTINGS_MODULE
	Timeout    time.Duration
}

// Introspect runs the project's manage.py shell and returns its app registry.
func Introspect(ctx context.Context, opts Options) (*Manifest, error) {
	python := opts.Python
	if python == "" {
		python = "python3"
	}
	dir := opts.ProjectDir
	if dir == "" {
		dir = "."
	}
	if _, err := os.Stat(filepath.Join(dir, "manage.py")); err != nil {
		return nil, fmt.Errorf("manage.py not found in %s: %w", dir, err)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, python, "manage.py", "shell", "-c", introspectScript)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if opts.Settings != "" {
		cmd.Env = append(cmd.Env, "DJANGO_SETTINGS_MODULE="+opts.Settings)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("run %s manage.py shell: %w", python, err)
		}
		return nil, fmt.Errorf("run %s manage.py shell: %w: %s", python, err, lastLine(msg))
	}

	return parseOutput(stdout.Bytes())
}

func parseOutput(out []byte) (*Manifest, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for sc.Scan() {
		line := sc.Text()
		payload, ok := strings.CutPrefix(line, manifestMarker)
		if !ok {
			continue
		}
		var m Manifest
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		return &m, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read introspection output: %w", err)
	}
	return nil, ErrNoManifest
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
