package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdrefine/internal/prompt"
)

// treeWorkers returns the worker count for directory conversion,
// roughly 75% of available CPUs.
func treeWorkers() int {
	n := runtime.NumCPU() * 3 / 4
	if n < 1 {
		n = 1
	}
	return n
}

// collectSupportedFiles walks inputDir and returns the paths the
// converter registry can handle, skipping temporary Office files.
func collectSupportedFiles(env *Env, inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), officeTempPrefix) {
			return nil
		}
		if env.Converters.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputDir, err)
	}
	return files, nil
}

// treeOutputPath maps an input file to its mirrored Markdown path under
// outputDir, creating intermediate directories as needed.
func treeOutputPath(inputDir, outputDir, inputPath string) (string, error) {
	rel, err := filepath.Rel(inputDir, inputPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", inputPath, err)
	}
	out := filepath.Join(outputDir, deriveOutputPath(rel))
	if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil { // #nosec G301 -- user output dir
		return "", fmt.Errorf("cannot create output directory: %w", err)
	}
	return out, nil
}

// convertTree converts every supported file under inputDir, mirroring
// the directory structure under outputDir. Files are converted
// concurrently. A file that fails is reported and counted but does not
// stop the rest of the tree; cancellation does.
func convertTree(ctx context.Context, env *Env, opts convertOptions, prompts *prompt.Set,
	aiExts map[string]bool, inputDir, outputDir string) error {

	files, err := collectSupportedFiles(env, inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(env.Stderr, "No supported files found in %s\n", inputDir)
		return nil
	}

	workers := treeWorkers()
	fmt.Fprintf(env.Stderr, "Converting %d files with %d workers...\n", len(files), workers)

	var failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for _, inputPath := range files {
		inputPath := inputPath
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			output, err := treeOutputPath(inputDir, outputDir, inputPath)
			if err == nil {
				err = convertOne(ctx, env, opts, prompts, aiExts, inputPath, output)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				fmt.Fprintf(env.Stderr, "Failed: %s: %v\n", inputPath, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	nFailed := failed.Load()
	fmt.Fprintf(env.Stderr, "Converted %d/%d files to %s\n",
		int64(len(files))-nFailed, len(files), outputDir)
	if nFailed > 0 {
		return fmt.Errorf("%d of %d files failed", nFailed, len(files))
	}
	return nil
}
