package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/asyncdraw/scenefile"
	"github.com/gogpu/asyncdraw/target"
	"github.com/spf13/cobra"
)

var errRenderCancelled = errors.New("render cancelled")

func newRenderCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Lay out and render a scene into a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenefile.Load(args[0])
			if err != nil {
				return err
			}
			out := outputPath(args[0], output)
			scale := a.scale(s)

			start := time.Now()
			px, stats, err := renderScene(cmd.Context(), s, scale, a.cfg.Timeout)
			if err != nil {
				return err
			}
			if err := px.SavePNG(out); err != nil {
				return err
			}
			asyncdraw.Logger().Info("asyncdraw: rendered",
				"scene", args[0], "output", out, "scale", scale,
				"painted", stats.Painted, "skipped", stats.Skipped,
				"elapsed", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d nodes\n", out, px.Width(), px.Height(), stats.Painted)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG (default: the scene path with a .png extension)")
	return cmd
}

// scale picks the configured scale, falling back to the scene's.
func (a *app) scale(s *scenefile.Scene) float64 {
	if a.cfg.Scale > 0 {
		return a.cfg.Scale
	}
	return s.DeviceScale()
}

func outputPath(scene, output string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(scene, filepath.Ext(scene)) + ".png"
}

// newCanvas returns a context over a fresh target cleared to bg.
func newCanvas(width, height int, bg color.Color) *target.Context {
	px := target.NewPixmapTarget(max(width, 1), max(height, 1))
	if bg != nil {
		px.Clear(bg)
	}
	return target.NewContext(px)
}

// renderScene completes the scene's layout and renders it once. The pass
// stops when ctx is done or, if timeout is positive, once it expires.
func renderScene(ctx context.Context, s *scenefile.Scene, scale float64, timeout time.Duration) (*target.PixmapTarget, asyncdraw.RenderStats, error) {
	isCancelled := asyncdraw.FromContext(ctx)
	if timeout > 0 {
		isCancelled = asyncdraw.Any(isCancelled, asyncdraw.AfterDeadline(time.Now().Add(timeout), time.Now))
	}

	tree := asyncdraw.NewTree()
	root := tree.NewRoot(s.Root, s.Bounds())
	if err := tree.CompleteLayout(root); err != nil {
		return nil, asyncdraw.RenderStats{}, err
	}
	frame, _ := tree.Frame(root)

	dc := newCanvas(int(math.Ceil(frame.W*scale)), int(math.Ceil(frame.H*scale)), s.BackgroundColor)
	defer func() { _ = dc.Close() }()

	dc.Translate(-frame.X*scale, -frame.Y*scale)
	stats, err := tree.RenderWithStats(root, dc, scale, isCancelled)
	if err != nil {
		return nil, stats, err
	}
	if stats.Cancelled {
		return nil, stats, fmt.Errorf("%w after %d nodes", errRenderCancelled, stats.Painted)
	}
	if err := dc.Commit(); err != nil {
		return nil, stats, err
	}
	return dc.Target(), stats, nil
}
