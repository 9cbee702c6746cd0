package source_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/autoapi/pkg/source"
)

// fakeProject creates a directory with a manage.py and a fake interpreter
// script that runs body instead of Python.
func fakeProject(t *testing.T, body string) (python, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter")
	}

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manage.py"), []byte("# stub\n"), 0o644))

	python = filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(python, []byte("#!/bin/sh\n"+body), 0o755))
	return python, dir
}

func TestIntrospect(t *testing.T) {
	python, dir := fakeProject(t, `
echo "Performing system checks..."
echo 'AUTOAPI_MANIFEST:{"apps":[{"label":"blog","name":"blog","path":"/srv/blog","models":[{"name":"Post","fields":[{"name":"title","type":"CharField","auto_created":false,"concrete":true}]}]}]}'
echo "done"
`)

	m, err := source.Introspect(context.Background(), source.Options{
		Python:     python,
		ProjectDir: dir,
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, m.Apps, 1)
	assert.Equal(t, "blog", m.Apps[0].Label)
	assert.Equal(t, "CharField", m.Apps[0].Models[0].Fields[0].Type)
}

func TestIntrospect_PassesSettingsModule(t *testing.T) {
	python, dir := fakeProject(t, `
printf 'AUTOAPI_MANIFEST:{"apps":[{"label":"%s","name":"x","path":"/x","models":[]}]}\n' "$DJANGO_SETTINGS_MODULE"
`)

	m, err := source.Introspect(context.Background(), source.Options{
		Python:     python,
		ProjectDir: dir,
		Settings:   "mysite.settings",
	})
	require.NoError(t, err)
	require.Len(t, m.Apps, 1)
	assert.Equal(t, "mysite.settings", m.Apps[0].Label)
}

func TestIntrospect_NoMarker(t *testing.T) {
	python, dir := fakeProject(t, `echo "nothing useful"`)

	_, err := source.Introspect(context.Background(), source.Options{Python: python, ProjectDir: dir})
	assert.ErrorIs(t, err, source.ErrNoManifest)
}

func TestIntrospect_CommandFails(t *testing.T) {
	python, dir := fakeProject(t, `
echo "Traceback (most recent call last):" >&2
echo "ModuleNotFoundError: No module named 'django'" >&2
exit 1
`)

	_, err := source.Introspect(context.Background(), source.Options{Python: python, ProjectDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No module named 'django'")
}

func TestIntrospect_BadJSON(t *testing.T) {
	python, dir := fakeProject(t, `echo 'AUTOAPI_MANIFEST:{"apps": ['`)

	_, err := source.Introspect(context.Background(), source.Options{Python: python, ProjectDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode manifest")
}

func TestIntrospect_MissingManagePy(t *testing.T) {
	_, err := source.Introspect(context.Background(), source.Options{ProjectDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manage.py not found")
}
