package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/asyncdraw/scenefile"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYAML = `
width: 20
height: 10
background: "#0000ff"
root:
  name: panel
  layout: {kind: stack, spacing: 2, padding: [1]}
  children:
    - name: left
      flex: 1
      paint: [{kind: fill, color: "#ff0000"}]
    - name: right
      flex: 1
`

// isolate points HOME at an empty directory so no user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// syncBuffer is a bytes.Buffer safe for the concurrent stdout and
// stderr writes of the watch command.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// execute runs the CLI with args and returns its combined output.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root, _ := newRootCmd()
	var buf syncBuffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return buf.String(), err
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestRender(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	scene := writeFile(t, filepath.Join(dir, "panel.yaml"), sceneYAML)

	out, err := execute(t, context.Background(), "render", scene, "--scale", "2")
	require.NoError(t, err, out)

	dst := filepath.Join(dir, "panel.png")
	assert.Contains(t, out, dst+": 40x20, 3 nodes")
	img := decodePNG(t, dst)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
	// left child is (1,1 8x8); right child is unpainted over the background.
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img.At(4, 4)))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img.At(30, 4)))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img.At(0, 0)))
}

func TestRender_OutputFlagAndSceneScale(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	scene := writeFile(t, filepath.Join(dir, "s.json"),
		`{"width": 4, "height": 3, "scale": 3, "root": {"paint": [{"kind": "fill", "color": "red"}]}}`)
	dst := filepath.Join(dir, "custom.png")

	_, err := execute(t, context.Background(), "render", scene, "-o", dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 9), decodePNG(t, dst).Bounds())
}

func TestRender_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no scene", []string{"render"}, "accepts 1 arg"},
		{"missing file", []string{"render", filepath.Join(dir, "nope.yaml")}, "no such file"},
		{"bad format", []string{"render", writeFile(t, filepath.Join(dir, "s.txt"), "")}, "unknown format"},
		{"bad kind", []string{"render", writeFile(t, filepath.Join(dir, "k.yaml"),
			"width: 1\nheight: 1\nroot: {layout: {kind: flow}}\n")}, "unknown kind"},
		{"overflow", []string{"render", writeFile(t, filepath.Join(dir, "o.yaml"),
			"width: 10\nheight: 10\nroot:\n  layout: {kind: stack, strict: true}\n  children: [{size: {w: 20}}]\n")}, "overflow"},
		{"negative scale", []string{"render", "--scale", "-1", filepath.Join(dir, "s.yaml")}, "invalid scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, context.Background(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error()+out, tt.want)
		})
	}
}

func TestRenderScene_Cancelled(t *testing.T) {
	s, err := scenefile.Decode(strings.NewReader(sceneYAML), scenefile.YAML, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, stats, err := renderScene(ctx, s, 1, 0)
	assert.ErrorIs(t, err, errRenderCancelled)
	assert.True(t, stats.Cancelled)

	_, _, err = renderScene(context.Background(), s, 1, time.Nanosecond)
	assert.ErrorIs(t, err, errRenderCancelled)
}

func TestTree(t *testing.T) {
	isolate(t)
	scene := writeFile(t, filepath.Join(t.TempDir(), "panel.yaml"), sceneYAML)

	out, err := execute(t, context.Background(), "tree", scene, "--log-level", "error")
	require.NoError(t, err)
	want := "panel (0,0 20x10)\n" +
		"  left (1,1 8x8)\n" +
		"  right (11,1 8x8)\n"
	assert.Equal(t, want, out)
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "asyncdraw "), out)
}

func TestConfigSources(t *testing.T) {
	home := isolate(t)
	dir := t.TempDir()
	scene := writeFile(t, filepath.Join(dir, "panel.yaml"), sceneYAML)

	t.Run("home config", func(t *testing.T) {
		writeFile(t, filepath.Join(home, ".asyncdraw.yaml"), "scale: 3\n")
		t.Cleanup(func() { _ = os.Remove(filepath.Join(home, ".asyncdraw.yaml")) })
		out, err := execute(t, context.Background(), "render", scene)
		require.NoError(t, err)
		assert.Contains(t, out, "60x30")
	})

	t.Run("env overrides file", func(t *testing.T) {
		cfg := writeFile(t, filepath.Join(dir, "cfg.yaml"), "scale: 3\n")
		t.Setenv("ASYNCDRAW_SCALE", "0.5")
		out, err := execute(t, context.Background(), "render", scene, "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "10x5")
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("ASYNCDRAW_SCALE", "0.5")
		out, err := execute(t, context.Background(), "render", scene, "--scale", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "20x10")
	})

	t.Run("tilde config path", func(t *testing.T) {
		writeFile(t, filepath.Join(home, "cfg.yaml"), "scale: 2\n")
		out, err := execute(t, context.Background(), "render", scene, "--config", "~/cfg.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "40x20")
	})

	t.Run("missing explicit config", func(t *testing.T) {
		_, err := execute(t, context.Background(), "render", scene, "--config", filepath.Join(dir, "none.yaml"))
		assert.ErrorContains(t, err, "read config")
	})
}

func TestLogFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	scene := writeFile(t, filepath.Join(dir, "panel.yaml"), sceneYAML)
	logPath := filepath.Join(dir, "logs", "asyncdraw.log")

	_, err := execute(t, context.Background(), "render", scene, "--log-file", logPath, "--log-level", "debug")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scenefile: scene loaded")
	assert.Contains(t, string(data), "asyncdraw: rendered")
	assert.False(t, asyncdraw.Logger().Enabled(context.Background(), slog.LevelError), "logger not reset after the command")
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, _, err := newLogger(logConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	scene := writeFile(t, filepath.Join(dir, "panel.yaml"), sceneYAML)
	dst := filepath.Join(dir, "out.png")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, err = execute(t, ctx, "watch", scene, "-o", dst)
		done <- err
	}()

	width := func() int {
		f, err := os.Open(dst)
		if err != nil {
			return 0
		}
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		if err != nil {
			return 0
		}
		return cfg.Width
	}
	require.Eventually(t, func() bool { return width() == 20 }, 5*time.Second, 10*time.Millisecond)

	writeFile(t, scene, strings.Replace(sceneYAML, "width: 20", "width: 30", 1))
	require.Eventually(t, func() bool { return width() == 30 }, 5*time.Second, 10*time.Millisecond)

	// A broken save is reported and the watcher keeps going.
	writeFile(t, scene, "width: [")
	writeFile(t, scene, strings.Replace(sceneYAML, "width: 20", "width: 12", 1))
	require.Eventually(t, func() bool { return width() == 12 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.Contains(t, out, dst+": 30x10")
}
