// Package demo wires the window, resource system, and renderer into a
// small animated scene used to exercise the pipeline end to end.
package demo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chewxy/math32"

	"github.com/kiln-gfx/kiln/internal/config"
	"github.com/kiln-gfx/kiln/internal/display"
	"github.com/kiln-gfx/kiln/internal/logger"
	"github.com/kiln-gfx/kiln/internal/render"
	"github.com/kiln-gfx/kiln/internal/render/gl33"
	"github.com/kiln-gfx/kiln/internal/render/gl41"
	"github.com/kiln-gfx/kiln/internal/render/null"
	"github.com/kiln-gfx/kiln/internal/resource"
	"github.com/kiln-gfx/kiln/pkg/math"
)

// headlessFrames bounds the null backend run so it can serve as a smoke
// test.
const headlessFrames = 3

// App owns the demo's window, backend, and scene.
type App struct {
	cfg       *config.Config
	window    *display.Window
	backend   render.Backend
	renderer  *render.Renderer
	resources *resource.System

	camera   *render.Camera
	orbiters []*render.Geometry
	start    time.Time
}

// New builds the full stack for the configured backend.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, start: time.Now()}

	if err := a.initBackend(); err != nil {
		return nil, err
	}

	a.resources = resource.NewSystem()
	if l, ok := a.backend.(resource.Listener); ok {
		a.resources.Subscribe(l)
	}

	if err := a.loadResources(); err != nil {
		a.Close()
		return nil, err
	}

	a.renderer = render.New(a.backend)
	a.buildScene()

	if a.window != nil {
		a.window.OnResize(func(w, h int) {
			a.renderer.Resize(w, h)
			*a.camera = *render.NewOrtho2D(float32(w), float32(h))
		})
	}

	return a, nil
}

func (a *App) initBackend() error {
	gfx := a.cfg.Graphics

	if gfx.Backend == "null" {
		a.backend = null.New(null.Options{
			Buffering: gfx.Buffering,
			Width:     gfx.Width,
			Height:    gfx.Height,
			SourceKey: gl41.SourceKey,
		})
		return nil
	}

	major, minor := 4, 1
	if gfx.Backend == "gl33" {
		major, minor = 3, 3
	}

	win, err := display.New(display.Config{
		Title:      "kiln demo",
		Width:      gfx.Width,
		Height:     gfx.Height,
		Fullscreen: gfx.Fullscreen,
		VSync:      gfx.VSync,
		GLMajor:    major,
		GLMinor:    minor,
	})
	if err != nil {
		return err
	}
	a.window = win

	w, h := win.Size()
	switch gfx.Backend {
	case "gl33":
		a.backend, err = gl33.New(gl33.Config{
			Buffering:    gfx.Buffering,
			FenceTimeout: gfx.FenceTimeout,
			Width:        w,
			Height:       h,
			Present:      win.SwapBuffers,
		})
	case "gl41":
		a.backend, err = gl41.New(gl41.Config{
			Buffering:    gfx.Buffering,
			FenceTimeout: gfx.FenceTimeout,
			Width:        w,
			Height:       h,
			Present:      win.SwapBuffers,
		})
	default:
		err = fmt.Errorf("unknown backend %q", gfx.Backend)
	}
	if err != nil {
		win.Close()
		return err
	}
	return nil
}

func (a *App) loadResources() error {
	if err := a.resources.AddImage(whiteImage()); err != nil {
		return fmt.Errorf("loading white texture: %w", err)
	}
	if err := a.loadBackground(); err != nil {
		return err
	}
	if err := a.resources.AddShader(spriteShader()); err != nil {
		return fmt.Errorf("compiling sprite shader: %w", err)
	}
	return nil
}

// loadBackground registers the "checker" texture: an asset file when
// the search dirs carry one, a procedural checkerboard otherwise.
func (a *App) loadBackground() error {
	if len(a.cfg.Assets.Dirs) > 0 {
		loader := resource.NewLoader(a.resources)
		for _, dir := range a.cfg.Assets.Dirs {
			loader.AddDir(dir)
		}
		for _, name := range []string{"background.tga", "background.png"} {
			if err := loader.LoadImage("checker", name); err == nil {
				return nil
			}
		}
		logger.Debug("no background asset found, using procedural checker")
	}
	if err := a.resources.AddImage(checkerImage()); err != nil {
		return fmt.Errorf("loading checker texture: %w", err)
	}
	return nil
}

// buildScene creates one static background quad and a ring of stream
// quads orbiting the center.
func (a *App) buildScene() {
	w := float32(a.cfg.Graphics.Width)
	h := float32(a.cfg.Graphics.Height)
	a.camera = render.NewOrtho2D(w, h)

	batcher := a.renderer.CreateBatcher(render.BatcherOptions{
		Camera: a.camera,
		Shader: "sprite",
	})

	bg := render.NewGeometry(render.Triangles,
		render.Quad(0, 0, w, h, [4]float32{1, 1, 1, 1}, 0, 0, 8, 8), nil)
	bg.SetUpload(render.UploadStatic)
	bg.SetTextures("checker")
	bg.SetSampler(0, render.SamplerState{
		MinFilter: render.FilterNearest,
		MagFilter: render.FilterNearest,
		WrapU:     render.WrapRepeat,
		WrapV:     render.WrapRepeat,
	})
	bg.SetDepth(1)
	batcher.Add(bg)

	colors := [][4]float32{
		{1, 0.3, 0.3, 1},
		{0.3, 1, 0.3, 1},
		{0.3, 0.5, 1, 1},
		{1, 1, 0.3, 1},
	}
	for i, c := range colors {
		g := render.NewGeometry(render.Triangles,
			render.Quad(-32, -32, 64, 64, c, 0, 0, 1, 1), nil)
		g.SetTextures("white")
		g.SetBlend(render.AlphaBlend())
		g.SetDepth(float32(i) * 0.1)
		batcher.Add(g)
		a.orbiters = append(a.orbiters, g)
	}

	logger.Info("scene built",
		zap.Int("geometries", batcher.Len()),
	)
}

// Run drives the frame loop until the window closes (or, headless, for
// a fixed number of frames).
func (a *App) Run() error {
	frames := 0
	for {
		if a.window != nil && !a.window.PollEvents() {
			return nil
		}

		a.animate(time.Since(a.start).Seconds())

		if err := a.renderer.Frame(); err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		frames++

		if a.window == nil && frames >= headlessFrames {
			logger.Info("headless run complete", zap.Int("frames", frames))
			return nil
		}
	}
}

func (a *App) animate(t float64) {
	cx := float32(a.cfg.Graphics.Width) / 2
	cy := float32(a.cfg.Graphics.Height) / 2
	for i, g := range a.orbiters {
		phase := float32(t) + float32(i)*1.57
		g.SetPosition(math.Vec3{
			X: cx + 200*math32.Cos(phase),
			Y: cy + 200*math32.Sin(phase),
		})
		g.SetRotation(math.QuatFromAxisAngle(math.Vec3{Z: 1}, phase))
	}
}

// Close tears the stack down in reverse order.
func (a *App) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	} else if a.backend != nil {
		a.backend.Cleanup()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func whiteImage() *resource.Image {
	return &resource.Image{
		ID:     "white",
		Width:  1,
		Height: 1,
		Pixels: []byte{255, 255, 255, 255},
	}
}

func checkerImage() *resource.Image {
	const n = 8
	px := make([]byte, n*n*4)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := byte(48)
			if (x+y)%2 == 0 {
				v = 72
			}
			i := (y*n + x) * 4
			px[i], px[i+1], px[i+2], px[i+3] = v, v, v, 255
		}
	}
	return &resource.Image{ID: "checker", Width: n, Height: n, Pixels: px}
}
