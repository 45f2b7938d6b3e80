package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/fileutil"
)

// discoverFiles finds all HTML decks to convert. A directory is walked
// recursively; its structure is mirrored under outputDir.
func discoverFiles(inputPath, outputDir string) ([]html2pptx.Input, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsHTML(inputPath) {
			return nil, fmt.Errorf("%w: %s", html2pptx.ErrInvalidExtension, inputPath)
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []html2pptx.Input{{HTMLPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []html2pptx.Input
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsHTML(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, html2pptx.Input{HTMLPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PPTX output path for an HTML file.
// An outputDir ending in .pptx names the file itself for single inputs.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return fileutil.OutputPath(inputPath, "")
	}

	if baseInputDir == "" && strings.EqualFold(filepath.Ext(outputDir), fileutil.PresentationExt) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return fileutil.OutputPath(inputPath, filepath.Join(outputDir, filepath.Dir(relPath)))
		}
	}

	return fileutil.OutputPath(inputPath, outputDir)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > html2pptx.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, html2pptx.MaxPoolSize)
	}
	return nil
}
