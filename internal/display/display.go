// Package display handles SDL2 window and OpenGL context creation and
// the window-side event loop.
package display

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/kiln-gfx/kiln/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool

	// GLMajor/GLMinor select the core profile context version. The
	// gl41 backend needs 4.1, the gl33 backend 3.3.
	GLMajor int
	GLMinor int
}

// Window wraps an SDL2 window and its OpenGL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext

	onResize []func(width, height int)
}

// New creates a window with an OpenGL core profile context current on
// the calling goroutine.
func New(cfg Config) (*Window, error) {
	if cfg.GLMajor == 0 {
		cfg.GLMajor, cfg.GLMinor = 4, 1
	}
	w := &Window{config: cfg}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Context attributes must be set before the window exists.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, cfg.GLMajor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, cfg.GLMinor)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 8)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	w.setSwapInterval(cfg.VSync)

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("gl_major", cfg.GLMajor),
		zap.Int("gl_minor", cfg.GLMinor),
	)

	return w, nil
}

// OnResize registers a listener for window size changes.
func (w *Window) OnResize(fn func(width, height int)) {
	w.onResize = append(w.onResize, fn)
}

// PollEvents drains the SDL event queue. It returns false once a quit
// event arrived.
func (w *Window) PollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				width, height := int(ev.Data1), int(ev.Data2)
				logger.Debug("window resized",
					zap.Int("width", width),
					zap.Int("height", height),
				)
				for _, fn := range w.onResize {
					fn(width, height)
				}
			}
		case *sdl.KeyboardEvent:
			if ev.Type != sdl.KEYDOWN {
				break
			}
			switch ev.Keysym.Sym {
			case sdl.K_ESCAPE:
				return false
			case sdl.K_F11:
				err := w.ApplyMode(w.config.Width, w.config.Height,
					!w.config.Fullscreen, w.config.VSync)
				if err != nil {
					logger.Warn("fullscreen toggle failed", zap.Error(err))
				}
			}
		}
	}
	return true
}

// ApplyMode switches window size, fullscreen, and vsync at runtime.
// Resize listeners fire through the resulting SIZE_CHANGED event.
func (w *Window) ApplyMode(width, height int, fullscreen, vsync bool) error {
	if fullscreen != w.config.Fullscreen {
		var flag uint32
		if fullscreen {
			flag = sdl.WINDOW_FULLSCREEN
		}
		if err := w.sdlWindow.SetFullscreen(flag); err != nil {
			return fmt.Errorf("SDL_SetWindowFullscreen failed: %w", err)
		}
		w.config.Fullscreen = fullscreen
	}
	if !fullscreen && (width != w.config.Width || height != w.config.Height) {
		w.sdlWindow.SetSize(int32(width), int32(height))
		w.config.Width, w.config.Height = width, height
	}
	if vsync != w.config.VSync {
		w.setSwapInterval(vsync)
		w.config.VSync = vsync
	}
	return nil
}

func (w *Window) setSwapInterval(vsync bool) {
	if vsync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}
}

// SwapBuffers presents the backbuffer.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the current drawable size.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	logger.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}
