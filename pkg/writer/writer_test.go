package writer_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
	"github.com/ogulcanaydogan/autoapi/pkg/writer"
)

func newTestWriter(t *testing.T) (*writer.Writer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/blog", 0o755))
	return writer.New(fs, ""), fs
}

var blog = model.AppDescriptor{Label: "blog", Path: "/srv/blog"}

func TestWriter_Append_CreatesHeaderOnce(t *testing.T) {
	w, fs := newTestWriter(t)

	path, err := w.Append(blog, "class PostSerializer:\n    pass\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/blog", writer.DefaultFilename), path)

	_, err = w.Append(blog, "class CommentSerializer:\n    pass")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t,
		writer.Header+
			"class PostSerializer:\n    pass\n\n\n"+
			"class CommentSerializer:\n    pass\n\n\n",
		string(data))
}

func TestWriter_Append_KeepsExistingContent(t *testing.T) {
	w, fs := newTestWriter(t)
	path := filepath.Join("/srv/blog", writer.DefaultFilename)
	require.NoError(t, afero.WriteFile(fs, path, []byte("# hand written\n"), 0o644))

	_, err := w.Append(blog, "x = 1\n")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "# hand written\nx = 1\n\n\n", string(data))
}

func TestWriter_CustomFilename(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/blog", 0o755))
	w := writer.New(fs, "serializers_gen.py")

	path, err := w.Append(blog, "x = 1\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/blog", "serializers_gen.py"), path)
}

func TestWriter_NoAppPath(t *testing.T) {
	w, _ := newTestWriter(t)

	_, err := w.Append(model.AppDescriptor{Label: "ghost"}, "x = 1\n")
	assert.ErrorIs(t, err, writer.ErrNoAppPath)
}

func TestWriter_ReadOnlyFs(t *testing.T) {
	w := writer.New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "")

	_, err := w.Append(blog, "x = 1\n")
	assert.Error(t, err)
}

func TestWriter_NewOS(t *testing.T) {
	dir := t.TempDir()
	w := writer.NewOS("")

	path, err := w.Append(model.AppDescriptor{Label: "blog", Path: dir}, "x = 1\n")
	require.NoError(t, err)

	data, err := afero.ReadFile(afero.NewOsFs(), path)
	require.NoError(t, err)
	assert.Equal(t, writer.Header+"x = 1\n\n\n", string(data))
}
