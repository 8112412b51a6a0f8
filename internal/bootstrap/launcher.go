// Package bootstrap holds the process-launcher shared by cmd/server
// and cmd/agent, adapted from the teacher's common/app.go Launcher to
// run against this module's own mlog.Logger instead of the teacher's.
package bootstrap

import (
	"sync"

	"github.com/ecoci/ecoci/pkg/mlog"
)

// App is one long-running process registered with a Launcher.
type App interface {
	Run(l *Launcher) error
}

// LauncherOption configures a Launcher at construction time.
type LauncherOption func(l *Launcher)

func WithLogger(logger mlog.Logger) LauncherOption {
	return func(l *Launcher) { l.Logger = logger }
}

func RunApp(name string, app App) LauncherOption {
	return func(l *Launcher) { l.Add(name, app) }
}

// Launcher runs every registered App concurrently and waits for all to
// return.
type Launcher struct {
	Logger mlog.Logger

	apps map[string]App
	wg   sync.WaitGroup
}

func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{apps: make(map[string]App)}

	for _, opt := range opts {
		opt(l)
	}

	if l.Logger == nil {
		l.Logger = &mlog.NoneLogger{}
	}

	return l
}

func (l *Launcher) Add(name string, a App) *Launcher {
	l.apps[name] = a
	return l
}

// Run starts every registered app in its own goroutine and blocks
// until all of them return.
func (l *Launcher) Run() {
	l.wg.Add(len(l.apps))

	for name, app := range l.apps {
		go func(name string, app App) {
			defer l.wg.Done()

			l.Logger.Infof("launcher: app %q starting", name)

			if err := app.Run(l); err != nil {
				l.Logger.Errorf("launcher: app %q exited with error: %v", name, err)
			}

			l.Logger.Infof("launcher: app %q finished", name)
		}(name, app)
	}

	l.wg.Wait()
	l.Logger.Info("launcher: all apps terminated")
}
