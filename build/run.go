package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssprite/cache"
	"cssprite/state"
	"cssprite/watch"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite, env.Watch = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("watch")
	if env.Watch {
		// rebuilds replace what previous pass produced
		env.Overwrite = true
	}

	store, err := cache.Open(env.Cfg.Sprites.CachePath, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	b, err := NewBuilder(env, store)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	start := time.Now()
	err = process(ctx, b, src, dst, log)
	log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))

	if !env.Watch {
		return err
	}
	if err != nil {
		log.Error("Initial build failed, watching for changes anyway", zap.Error(err))
	}
	return watchSource(ctx, b, src, dst, log)
}

// watchSource rebuilds everything whenever something under source changes.
// Files produced by the builder are ignored.
func watchSource(ctx context.Context, b *Builder, src, dst string, log *zap.Logger) error {
	root := b.SheetRoot(dst)
	w, err := watch.New(log, func(path string) bool {
		return b.Wrote(path) || within(path, root)
	})
	if err != nil {
		return fmt.Errorf("unable to start watcher: %w", err)
	}
	defer w.Close()

	target := src
	if fi, err := os.Stat(src); err == nil && !fi.IsDir() {
		// images usually live next to the stylesheet
		target = filepath.Dir(src)
	}
	if err := w.Add(target); err != nil {
		return fmt.Errorf("unable to watch %s: %w", target, err)
	}

	log.Info("Watching for changes, press Ctrl+C to stop", zap.String("path", target))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		log.Info("Rebuilding", zap.Strings("changed", changed))
		start := time.Now()
		if err := process(ctx, b, src, dst, log); err != nil {
			log.Error("Rebuild failed", zap.Error(err))
			return
		}
		log.Info("Rebuild completed", zap.Duration("elapsed", time.Since(start)))
	})
}

// process handles the core logic independently of CLI framework. It
// determines the input type (directory or single file) and processes
// accordingly.
func process(ctx context.Context, b *Builder, src, dst string, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	switch {
	case fi.IsDir():
		return processDir(ctx, b, src, dst, log)
	case fi.Mode().IsRegular():
		return processFile(ctx, b, src, filepath.Base(src), dst, log)
	}
	return fmt.Errorf("unexpected path mode for (%s): %s", src, fi.Mode())
}

// processDir walks directory tree finding stylesheets and processes them.
// Destination tree is skipped when it is inside of the source one.
func processDir(ctx context.Context, b *Builder, dir, dst string, log *zap.Logger) (err error) {
	count, failed := 0, 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	skipDst := dst != dir && within(dst, dir)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if skipDst && path == dst {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".css") || b.Wrote(path) {
			return nil
		}

		count++
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		if err := processFile(ctx, b, path, rel, dst, log); err != nil {
			failed++
			log.Error("Unable to process stylesheet", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	if err == nil && failed > 0 {
		err = fmt.Errorf("unable to process %d of %d stylesheets", failed, count)
	}
	return err
}

// processFile processes single stylesheet recovering from panics, so one
// broken image does not stop processing of the whole directory.
func processFile(ctx context.Context, b *Builder, src, rel, dst string, log *zap.Logger) (rerr error) {
	log.Debug("Stylesheet processing starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Stylesheet processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		}
	}(time.Now())

	_, err := b.Build(ctx, src, rel, dst)
	return err
}
