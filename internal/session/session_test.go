package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/stackupctl/internal/markup"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

const legacyStackup = `$begin 'Stackup'
$begin 'Layers'
Layer(Name='L1', Thickness=0.035, Material='copper')
$end 'Layers'
$end 'Stackup'
`

type fakeHost struct {
	exportData string
	importErr  error
	exported   []string
	imported   []string
}

func (f *fakeHost) ExportStackup(_ context.Context, path string) error {
	f.exported = append(f.exported, path)
	return os.WriteFile(path, []byte(f.exportData), 0o644)
}

func (f *fakeHost) ImportStackup(_ context.Context, path string) error {
	f.imported = append(f.imported, path)
	return f.importErr
}

func TestSession_EditSaveImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackup.xml")
	h := &fakeHost{exportData: legacyStackup}

	s, err := Open(context.Background(), path, Options{Host: h, ExportOnOpen: true, ImportOnSave: true})
	require.NoError(t, err)
	require.Len(t, s.Stackup().Layers, 1)

	require.NoError(t, s.Stackup().ApplyEdits(stackup.KindLayer, []stackup.Edit{{Selector: "L1", Field: "thickness", Value: "0.07"}}))
	require.NoError(t, s.Save(context.Background()))

	assert.Equal(t, []string{path}, h.exported)
	assert.Equal(t, []string{path}, h.imported)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, markup.Header), "legacy input is written back as strict markup")
	assert.Contains(t, text, `<Layer Name="L1" Thickness="0.07" Material="copper"/>`)
}

func TestSession_ImportFailureKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackup.xml")
	require.NoError(t, os.WriteFile(path, []byte(legacyStackup), 0o644))
	importErr := errors.New("host busy")
	h := &fakeHost{importErr: importErr}

	s, err := Open(context.Background(), path, Options{Host: h, ImportOnSave: true})
	require.NoError(t, err)
	err = s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, importErr))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), markup.Header)
}

func TestSession_LoadFailureWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackup.stk")
	broken := "$begin 'Stackup'\n"
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	_, err := Open(context.Background(), path, Options{})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, broken, string(data))
}

func TestSession_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackup.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<Stackup/>`), 0o644))

	s, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	s.Close()
	assert.Nil(t, s.Stackup())
	assert.ErrorIs(t, s.Save(context.Background()), ErrClosed)
}

func TestSession_HostRequired(t *testing.T) {
	_, err := Open(context.Background(), "unused.xml", Options{ExportOnOpen: true})
	assert.Error(t, err)
}
