package commands

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/logger"
)

var watchFlags overrides

// WatchCmd regenerates whenever the input or configuration changes.
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate when the input changes",
	Long: `Generate once, then watch the input (an IR document, or the .go files of a
Go package) and the configuration file, regenerating after changes settle.

Rapid successive writes are coalesced; the quiet period is watch.debounce_ms.
A failed generation is reported and watching continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := watchFlags.apply(cmd, cfg); err != nil {
			return err
		}
		applyLogConfig(cmd, cfg)
		log := logger.ComponentLogger("watch")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		regenerate := func(ctx context.Context) {
			// the configuration may be what changed
			current, err := loadConfig()
			if err == nil {
				err = watchFlags.apply(cmd, current)
			}
			if err != nil {
				pterm.Error.Printf("Invalid configuration: %v\n", err)
				return
			}
			b, err := runGenerate(ctx, current, log)
			if err != nil {
				pterm.Error.Printf("Generation failed: %v\n", err)
				printTargetErrors(b)
				return
			}
			pterm.Success.Printf("Regenerated %d files at %s\n", len(b.files), time.Now().Format("15:04:05"))
		}

		regenerate(ctx)

		paths, relevant, err := watchTargets(cfg)
		if err != nil {
			return err
		}
		w, err := newWatcher(paths, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, relevant, log)
		if err != nil {
			return err
		}
		defer w.Close()

		pterm.Info.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(paths, ", "))
		return w.Run(ctx, regenerate)
	},
}

func init() {
	watchFlags.register(WatchCmd)
}

// watchTargets lists the directories to watch and a filter for the files in
// them that should trigger a rebuild. Directories are watched rather than
// files because editors often save by renaming a new file into place.
func watchTargets(cfg *config.Config) ([]string, func(string) bool, error) {
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	if cfg.File != "" {
		abs, _ := filepath.Abs(cfg.File)
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	format, err := inputFormat(cfg)
	if err != nil {
		return nil, nil, err
	}
	goSources := false
	if format == formatGo {
		goSources = true
		for _, pattern := range strings.Split(cfg.Input.Path, ",") {
			recursive := strings.HasSuffix(pattern, "/...")
			root, _ := filepath.Abs(cfg.Resolve(strings.TrimSuffix(pattern, "/...")))
			if !recursive {
				dirs[root] = true
				continue
			}
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if name := d.Name(); path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
						return filepath.SkipDir
					}
					dirs[path] = true
				}
				return nil
			})
			if err != nil {
				return nil, nil, errors.Wrapf(err, "failed to walk %s", root)
			}
		}
	} else {
		abs, _ := filepath.Abs(cfg.Resolve(cfg.Input.Path))
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	relevant := func(name string) bool {
		abs, err := filepath.Abs(name)
		if err != nil {
			return false
		}
		if files[abs] {
			return true
		}
		return goSources && strings.HasSuffix(abs, ".go") && !strings.HasSuffix(abs, "_test.go")
	}

	paths := make([]string, 0, len(dirs))
	for d := range dirs {
		paths = append(paths, d)
	}
	return paths, relevant, nil
}

// watcher turns file system events into debounced rebuilds.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	relevant func(string) bool
	log      *zap.SugaredLogger
}

func newWatcher(paths []string, debounce time.Duration, relevant func(string) bool, log *zap.SugaredLogger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", p)
		}
	}
	return &watcher{fs: fw, debounce: debounce, relevant: relevant, log: log}, nil
}

// Run calls onChange after relevant events have been quiet for the debounce
// period, until ctx is done. onChange runs on the calling goroutine, so
// rebuilds never overlap.
func (w *watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.log.Debugw("Detected change", logger.FieldFile, event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			w.log.Infow("Rebuilding", logger.FieldPhase, logger.PhaseLoad)
			onChange(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err.Error())
		}
	}
}

// Close stops watching.
func (w *watcher) Close() error {
	return w.fs.Close()
}
