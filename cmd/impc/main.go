// Command impc compiles programs in the imperative source language to
// WebAssembly Text format, and optionally executes them on wazero.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/p-maje/inz-wasm-compiler/compiler"
	"github.com/p-maje/inz-wasm-compiler/runtime"
	"github.com/p-maje/inz-wasm-compiler/service"
)

func main() {
	var (
		outFile     = flag.String("o", "", "Write WAT output to file (default stdout)")
		execute     = flag.Bool("run", false, "Compile and execute the program")
		stdinData   = flag.String("stdin", "", "Input fed to the program (default: os.Stdin)")
		serve       = flag.Bool("serve", false, "Serve the compiler over HTTP")
		listen      = flag.String("listen", ":8080", "Listen address for -serve")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *serve {
		if err := runServer(*listen); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: impc [-o out.wat] <file>")
		fmt.Fprintln(os.Stderr, "       impc -run [-stdin data] <file>")
		fmt.Fprintln(os.Stderr, "       impc -i <file>  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       impc -serve [-listen addr]")
		os.Exit(1)
	}
	srcFile := flag.Arg(0)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(srcFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(srcFile, *outFile, *execute, *stdinData); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(srcFile, outFile string, execute bool, stdinData string) error {
	source, err := os.ReadFile(srcFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	wat, err := compiler.Compile(string(source))
	if err != nil {
		return err
	}

	if execute {
		var stdin io.Reader = os.Stdin
		if stdinData != "" {
			stdin = strings.NewReader(stdinData)
		}
		runner := runtime.New()
		return runner.Run(context.Background(), wat, stdin, os.Stdout)
	}

	if outFile != "" {
		return os.WriteFile(outFile, []byte(wat+"\n"), 0o644)
	}
	fmt.Println(wat)
	return nil
}

func runServer(listen string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	srv := service.New(service.WithLogger(logger))
	logger.Info("listening", zap.String("addr", listen))
	return http.ListenAndServe(listen, srv)
}
