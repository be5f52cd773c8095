package deployment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree lays out a minimal data home with one deployment.
func makeTree(t *testing.T, name string) (dataHome, deploymentsRoot string) {
	t.Helper()
	dataHome = t.TempDir()
	deploymentsRoot = filepath.Join(dataHome, "deployments")
	dataPath := filepath.Join(deploymentsRoot, "2021", name, "data", "out", "profiles", "sci-profile", "rt")
	require.NoError(t, os.MkdirAll(dataPath, 0o755))
	return dataHome, deploymentsRoot
}

func TestRootDirs(t *testing.T) {
	dataHome, _ := makeTree(t, "ru30-20210503T1929")
	t.Setenv(EnvDataHome, dataHome)

	gotHome, gotRoot, err := RootDirs(false)
	require.NoError(t, err)
	assert.Equal(t, dataHome, gotHome)
	assert.Equal(t, filepath.Join(dataHome, "deployments"), gotRoot)
}

func TestRootDirsTestEnv(t *testing.T) {
	dataHome, _ := makeTree(t, "ru30-20210503T1929")
	t.Setenv(EnvDataHome, "")
	t.Setenv(EnvDataHomeTest, dataHome)

	_, _, err := RootDirs(false)
	assert.Error(t, err, "production env var unset")

	_, _, err = RootDirs(true)
	assert.NoError(t, err)
}

func TestRootDirsMissingDeployments(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv(EnvDataHome, dataHome)

	_, _, err := RootDirs(false)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	_, root := makeTree(t, "ru30-20210503T1929")

	paths, err := Resolve("ru30-20210503T1929", root, "sci", "profile", "rt")
	require.NoError(t, err)

	assert.Equal(t, "ru30-20210503T1929", paths.Name)
	assert.Equal(t, filepath.Join(root, "2021", "ru30-20210503T1929"), paths.Location)
	assert.Equal(t, filepath.Join(paths.Location, "data", "out", "profiles", "sci-profile", "rt", "qc_queue"), paths.QCQueue)
	assert.Equal(t, filepath.Join(paths.Location, "proc-logs"), paths.ProcLogs)
	assert.Equal(t, filepath.Join(paths.Location, "config", "qc"), paths.QCConfigDir)
}

func TestResolveErrors(t *testing.T) {
	_, root := makeTree(t, "ru30-20210503T1929")

	tests := []struct {
		name       string
		deployment string
		mode       string
	}{
		{"malformed name", "ru30", "rt"},
		{"bad trajectory date", "ru30-20211503T1929", "rt"},
		{"unknown deployment", "ru29-20210503T1929", "rt"},
		{"missing mode directory", "ru30-20210503T1929", "delayed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.deployment, root, "sci", "profile", tt.mode)
			assert.Error(t, err)
		})
	}
}

func TestLogFileName(t *testing.T) {
	assert.Equal(t, "ctd_hysteresis_test_sci-profile-rt.log",
		LogFileName("ctd_hysteresis_test", "sci", "profile", "rt"))
}
