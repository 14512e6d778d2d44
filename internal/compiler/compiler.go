// Package compiler runs task programs in manifest mode and stores the
// manifests they print.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	incitev1 "github.com/kination/incite/api/v1"
	"github.com/kination/incite/internal/ctxlog"
	"github.com/kination/incite/internal/manifest"
)

// Source is a directory of task programs
type Source struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// RunFunc executes a command and returns its standard output
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Compiler turns task programs into manifest files
type Compiler struct {
	// Run executes task programs, exec.CommandContext when nil
	Run RunFunc

	// Format is the manifest encoding written to disk
	Format string
}

// LoadSources reads a YAML list of sources
func LoadSources(configPath string) ([]Source, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}

	var sources []Source
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	return sources, nil
}

// Compile runs every .go file under each source with --manifest and writes
// one manifest per program to outputDir. It returns the written paths.
func (c *Compiler) Compile(ctx context.Context, sources []Source, outputDir string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	for _, src := range sources {
		logger.Info("Scanning source.", "name", src.Name, "location", src.Location)

		err := filepath.WalkDir(src.Location, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(d.Name()) != ".go" || strings.HasSuffix(d.Name(), "_test.go") {
				return nil
			}

			out, err := c.compileFile(ctx, logger, path, outputDir)
			if err != nil {
				return err
			}
			if out != "" {
				written = append(written, out)
			}
			return nil
		})
		if err != nil {
			return written, fmt.Errorf("walk error in %s: %w", src.Location, err)
		}
	}
	return written, nil
}

func (c *Compiler) compileFile(ctx context.Context, logger *slog.Logger, srcPath, outputDir string) (string, error) {
	run := c.Run
	if run == nil {
		run = execRun
	}

	output, err := run(ctx, "go", "run", srcPath, "--manifest", "--manifest-format", manifest.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("execution failed for %s: %w", srcPath, err)
	}
	if len(bytes.TrimSpace(output)) == 0 {
		logger.Warn("Program produced no output. Skipping.", "path", srcPath)
		return "", nil
	}

	var doc incitev1.TaskNamespace
	if err := json.Unmarshal(output, &doc); err != nil {
		return "", fmt.Errorf("invalid manifest from %s: %w", srcPath, err)
	}

	format := c.Format
	if format == "" {
		format = manifest.FormatYAML
	}
	baseName := filepath.Base(srcPath)
	fileName := strings.TrimSuffix(baseName, filepath.Ext(baseName)) + "." + format
	savePath := filepath.Join(outputDir, fileName)

	var buf bytes.Buffer
	if err := manifest.Encode(&buf, &doc, format); err != nil {
		return "", err
	}
	if err := os.WriteFile(savePath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write error: %w", err)
	}

	logger.Info("Compiled.", "source", baseName, "manifest", fileName)
	return savePath, nil
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w\n[Stderr]: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
