package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var classNameRegex = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

type options struct {
	tokens    bool
	parseTree bool
	// traceOutput receives the trace of every file, each line prefixed
	// with the file it belongs to. Nil disables tracing.
	traceOutput io.Writer
}

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

func getOutputPath(filePath string) string {
	return removeExtension(filePath) + ".vm"
}

func getTokensOutputPath(filePath string) string {
	return removeExtension(filePath) + "T.xml"
}

func getParseTreeOutputPath(filePath string) string {
	return removeExtension(filePath) + ".xml"
}

// compileFile compiles the class read from r and returns its declared
// name. The parse tree goes to tree unless it is nil.
func compileFile(r io.Reader, w io.Writer, tree io.Writer, trace *log.Logger) (string, error) {
	writer := NewVMWriter(w)
	compiler := NewJackCompiler(NewTokenizer(r), writer)
	if tree != nil {
		compiler.SetParseTree(NewParseTreeWriter(tree))
	}
	if trace != nil {
		compiler.SetTrace(trace)
	}
	err := compiler.Compile()
	return compiler.ClassName(), err
}

// processFile compiles path into a .vm file beside it. Nothing is
// written unless the whole class compiles.
func processFile(path string, opts options) (outputPath string, err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %q: %w", path, err)
	}

	expectedClassName := getClassName(path)
	if !classNameRegex.MatchString(expectedClassName) {
		return "", fmt.Errorf("%q is not a valid class name", expectedClassName)
	}

	var trace *log.Logger
	if opts.traceOutput != nil {
		trace = log.New(opts.traceOutput, path+": ", 0)
	}
	var code, parseTree bytes.Buffer
	var treeOutput io.Writer
	if opts.parseTree {
		treeOutput = &parseTree
	}
	className, err := compileFile(bytes.NewReader(source), &code, treeOutput, trace)
	if err != nil {
		return "", err
	}
	if className != expectedClassName {
		return "", fmt.Errorf("class %s must be declared in %s.jack", className, className)
	}

	if opts.tokens {
		var listing bytes.Buffer
		if err := WriteTokensXML(NewTokenizer(bytes.NewReader(source)), &listing); err != nil {
			return "", err
		}
		if err := os.WriteFile(getTokensOutputPath(path), listing.Bytes(), 0644); err != nil {
			return "", fmt.Errorf("could not write token listing: %w", err)
		}
	}
	if opts.parseTree {
		if err := os.WriteFile(getParseTreeOutputPath(path), parseTree.Bytes(), 0644); err != nil {
			return "", fmt.Errorf("could not write parse tree: %w", err)
		}
	}

	outputPath = getOutputPath(path)
	if err := os.WriteFile(outputPath, code.Bytes(), 0644); err != nil {
		return outputPath, fmt.Errorf("could not write %q: %w", outputPath, err)
	}
	return outputPath, nil
}

// collectFiles returns fileOrDir itself, or the .jack files directly
// inside it.
func collectFiles(fileOrDir string) (files []string, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file/dir %q: %w", fileOrDir, err)
	}

	if !fileOrDirStat.IsDir() {
		if filepath.Ext(fileOrDir) != ".jack" {
			return nil, fmt.Errorf("%q is not a .jack file", fileOrDir)
		}
		return []string{fileOrDir}, nil
	}

	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("could not open directory %q: %w", fileOrDir, err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .jack files found in %q", fileOrDir)
	}
	return files, nil
}

// compileAll compiles files with at most jobs of them in flight. Every
// file is attempted; the failures are joined into the returned error.
func compileAll(files []string, jobs int, opts options, status *log.Logger) error {
	errs := make([]error, len(files))

	var group errgroup.Group
	group.SetLimit(jobs)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			status.Printf("Compiling file %q", file)
			outputPath, err := processFile(file, opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", file, err)
				return nil
			}
			status.Printf("Saved as %q", outputPath)
			return nil
		})
	}
	// Wait only reports the first error, so workers record theirs in
	// errs and always return nil.
	_ = group.Wait()

	return errors.Join(errs...)
}

func main() {
	filename := flag.String("d", "", ".jack file to compile or directory containing .jack files")
	jobs := flag.Int("j", runtime.NumCPU(), "number of files compiled concurrently")
	tokens := flag.Bool("tokens", false, "also write a <Name>T.xml token listing per file")
	parseTree := flag.Bool("xml", false, "also write a <Name>.xml parse tree per file")
	verbose := flag.Bool("v", false, "trace the compiled productions")

	flag.Parse()

	if *filename == "" {
		flag.Usage()
		os.Exit(2)
	}

	status := log.New(os.Stdout, "", 0)
	failures := log.New(os.Stderr, "", 0)

	opts := options{tokens: *tokens, parseTree: *parseTree}
	if *verbose {
		opts.traceOutput = os.Stderr
	}

	files, err := collectFiles(*filename)
	if err != nil {
		failures.Fatal(err)
	}
	if *jobs < 1 {
		*jobs = 1
	}

	if err := compileAll(files, *jobs, opts, status); err != nil {
		failures.Printf("Failed to compile:\n%v", err)
		os.Exit(1)
	}
}
