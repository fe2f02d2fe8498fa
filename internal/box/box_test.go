package box

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeBox(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "red.tgsk"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))
	return root
}

func TestFindRootWalksUpward(t *testing.T) {
	root := makeBox(t)
	r, err := FindRoot(filepath.Join(root, "scripts"))
	require.NoError(t, err)
	require.Equal(t, root, r.Root())
}

func TestFindRootMissingSentinel(t *testing.T) {
	dir := t.TempDir()
	_, err := FindRoot(dir)
	require.Error(t, err)
	require.Equal(t, "E_BOX_REQUIRED", err.(BoxError).Kind)
}

func TestResolveRootAnchoredPath(t *testing.T) {
	root := makeBox(t)
	r, err := FindRoot(root)
	require.NoError(t, err)

	resolved, err := r.Resolve("/scripts/foo.json")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "scripts", "foo.json"), resolved)
}

func TestResolveEscapingParentTraversalFails(t *testing.T) {
	root := makeBox(t)
	r, err := FindRoot(root)
	require.NoError(t, err)

	_, err = r.Resolve("../outside.json")
	require.Error(t, err)
	require.Equal(t, "E_BOX_VIOLATION", err.(BoxError).Kind)
}

func TestCdStaysWithinRoot(t *testing.T) {
	root := makeBox(t)
	r, err := FindRoot(root)
	require.NoError(t, err)

	require.NoError(t, r.Cd("/scripts"))
	require.Equal(t, filepath.Join(root, "scripts"), r.Cwd())
}

func TestRejectsUserinfoComponent(t *testing.T) {
	root := makeBox(t)
	r, err := FindRoot(root)
	require.NoError(t, err)

	_, err = r.Resolve("user@host/file.json")
	require.Error(t, err)
	require.Equal(t, "E_BOX_VIOLATION", err.(BoxError).Kind)
}
