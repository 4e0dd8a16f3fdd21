package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/asyncdraw/scenefile"
	"github.com/gogpu/asyncdraw/target"
	"github.com/spf13/cobra"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch <scene>",
		Short: "Re-render a scene every time its file changes",
		Long: `Watch renders the scene, then reloads and redraws it whenever the file
changes. A change that arrives while a redraw is running cancels that
redraw. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &watcher{
				app:    a,
				scene:  filepath.Clean(args[0]),
				output: outputPath(args[0], output),
				stdout: cmd.OutOrStdout(),
			}
			return w.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG (default: the scene path with a .png extension)")
	return cmd
}

// background boxes a possibly nil color for atomic.Pointer.
type background struct {
	color color.Color
}

// watcher keeps one display alive across reloads of a scene file.
type watcher struct {
	app    *app
	scene  string
	output string
	stdout io.Writer
	outMu  sync.Mutex

	tree    *asyncdraw.Tree
	root    asyncdraw.NodeID
	display *asyncdraw.Display

	scale      atomic.Uint64 // math.Float64bits
	background atomic.Pointer[background]
}

// pass is a pending display result.
type pass = <-chan asyncdraw.Result

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = fw.Close() }()
	// The directory, not the file: editors often replace files on save.
	if err := fw.Add(filepath.Dir(w.scene)); err != nil {
		return fmt.Errorf("watch %s: %w", w.scene, err)
	}

	w.scale.Store(math.Float64bits(asyncdraw.IdentityScale))
	w.tree = asyncdraw.NewTree()
	w.root = w.tree.NewRoot(asyncdraw.Element{}, asyncdraw.R(0, 0, 1, 1))
	w.display = asyncdraw.NewDisplay(w.tree, w.root,
		asyncdraw.WithWorkers(max(w.app.cfg.Workers, 1)),
		asyncdraw.WithScaleSource(func() float64 { return math.Float64frombits(w.scale.Load()) }),
		asyncdraw.WithSurfaceFactory(w.newSurface))
	defer func() { _ = w.display.Close() }()

	g, ctx := errgroup.WithContext(ctx)
	passes := make(chan pass, 16)

	g.Go(func() error {
		defer close(passes)
		w.reload(ctx, passes)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != w.scene || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				asyncdraw.Logger().Debug("asyncdraw: scene changed", "scene", w.scene, "op", ev.Op.String())
				w.reload(ctx, passes)
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				return fmt.Errorf("watch: %w", err)
			}
		}
	})

	// Results are consumed in Redraw order, so the newest pass is saved last.
	g.Go(func() error {
		for p := range passes {
			w.finish(<-p)
		}
		return nil
	})
	return g.Wait()
}

// reload rebuilds the root from the scene file and starts a redraw. A
// scene that fails to load is logged and the previous one stays.
func (w *watcher) reload(ctx context.Context, passes chan<- pass) {
	s, err := scenefile.Load(w.scene)
	if err != nil {
		asyncdraw.Logger().Warn("asyncdraw: reload failed", "scene", w.scene, "err", err)
		w.printf("%v\n", err)
		return
	}
	w.scale.Store(math.Float64bits(w.app.scale(s)))
	w.background.Store(&background{color: s.BackgroundColor})
	if err := w.tree.SetElement(w.root, s.Root); err != nil {
		asyncdraw.Logger().Warn("asyncdraw: reload failed", "scene", w.scene, "err", err)
		return
	}
	if err := w.tree.SetBounds(w.root, s.Bounds()); err != nil {
		asyncdraw.Logger().Warn("asyncdraw: reload failed", "scene", w.scene, "err", err)
		return
	}

	select {
	case passes <- w.display.Redraw(ctx):
	case <-ctx.Done():
	}
}

func (w *watcher) printf(format string, args ...any) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	fmt.Fprintf(w.stdout, format, args...)
}

func (w *watcher) newSurface(width, height int) asyncdraw.Surface {
	var bg color.Color
	if b := w.background.Load(); b != nil {
		bg = b.color
	}
	return newCanvas(width, height, bg)
}

func (w *watcher) finish(res asyncdraw.Result) {
	log := asyncdraw.Logger().With("generation", res.Generation)
	switch {
	case res.Stats.Cancelled:
		log.Debug("asyncdraw: pass superseded", "painted", res.Stats.Painted)
	case res.Err != nil:
		log.Warn("asyncdraw: redraw failed", "err", res.Err)
		w.printf("%v\n", res.Err)
	default:
		rgba, ok := res.Image.(*image.RGBA)
		if !ok {
			rgba = image.NewRGBA(res.Image.Bounds())
			xdraw.Draw(rgba, rgba.Bounds(), res.Image, res.Image.Bounds().Min, xdraw.Src)
		}
		if err := target.NewPixmapTargetFromImage(rgba).SavePNG(w.output); err != nil {
			log.Warn("asyncdraw: save failed", "output", w.output, "err", err)
			return
		}
		log.Info("asyncdraw: redrawn", "output", w.output, "painted", res.Stats.Painted, "scale", res.Scale)
		w.printf("%s: %dx%d, %d nodes\n", w.output, rgba.Bounds().Dx(), rgba.Bounds().Dy(), res.Stats.Painted)
	}
}
