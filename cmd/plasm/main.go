// Command plasm compiles plasm source files to WebAssembly text format.
// It is a thin driver over the internal/lexer, internal/parser,
// internal/sema, internal/irbuild, internal/pass and internal/wat
// packages: read source, run the pipeline, report diagnostics or write
// output.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/plasm-lang/plasm/internal/irbuild"
	"github.com/plasm-lang/plasm/internal/parser"
	"github.com/plasm-lang/plasm/internal/pass"
	"github.com/plasm-lang/plasm/internal/sema"
	"github.com/plasm-lang/plasm/internal/wat"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "plasm",
		Short:         "plasm compiles a small statically-typed language to WebAssembly text format",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "dump per-phase diagnostics and IR/WAT")
	root.AddCommand(checkCmd(), buildCmd(), runCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "plasm: %v\n", err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "parse and type-check a source file without emitting WAT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := compile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: no errors found\n", args[0])
			return nil
		},
	}
}

func buildCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "compile a source file to a .wat file, and to .wasm if wat2wasm is on PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			text, _, err := compile(filename)
			if err != nil {
				return err
			}

			watPath := output
			if watPath == "" {
				watPath = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".wat"
			}
			if err := os.WriteFile(watPath, []byte(text), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", watPath, err)
			}
			fmt.Printf("wrote %s\n", watPath)

			wasmPath := strings.TrimSuffix(watPath, ".wat") + ".wasm"
			if err := runWat2Wasm(watPath, wasmPath); err != nil {
				fmt.Fprintf(os.Stderr, "plasm: wat2wasm not run: %v\n", err)
			} else {
				fmt.Printf("wrote %s\n", wasmPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .wat path (default: <file>.wat)")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "compile a source file and execute it with wasmtime, if present on PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			text, _, err := compile(filename)
			if err != nil {
				return err
			}

			dir, err := os.MkdirTemp("", "plasm-run-*")
			if err != nil {
				return fmt.Errorf("creating temp dir: %w", err)
			}
			defer os.RemoveAll(dir)

			watPath := filepath.Join(dir, "program.wat")
			wasmPath := filepath.Join(dir, "program.wasm")
			if err := os.WriteFile(watPath, []byte(text), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", watPath, err)
			}
			if err := runWat2Wasm(watPath, wasmPath); err != nil {
				return fmt.Errorf("wat2wasm is required to run a program: %w", err)
			}

			runtime, err := exec.LookPath("wasmtime")
			if err != nil {
				return fmt.Errorf("wasmtime not found on PATH: %w", err)
			}
			runCmd := exec.Command(runtime, wasmPath)
			runCmd.Stdout = os.Stdout
			runCmd.Stderr = os.Stderr
			return runCmd.Run()
		},
	}
}

// compile runs the full pipeline over filename, returning the rendered
// WAT text plus the symbol table. The first phase that reports any
// diagnostics stops the pipeline, and the returned error carries that
// phase's diagnostics.
func compile(filename string) (string, *sema.SymbolTable, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "plasm: parsing %s\n", filename)
	}
	prog := parser.ParseProgram(src)
	if len(prog.Errors) > 0 {
		return "", nil, fmt.Errorf("parse errors:\n%s", strings.Join(prog.Errors, "\n"))
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "plasm: resolving names\n")
	}
	st := sema.BuildSymbolTable(prog)
	if st.Errors.HasErrors() {
		return "", nil, fmt.Errorf("name resolution errors:\n%s", st.Errors.String())
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "plasm: type checking\n")
	}
	tc := sema.CheckProgram(prog, st)
	if tc.Errors.HasErrors() {
		return "", nil, fmt.Errorf("type checking errors:\n%s", tc.Errors.String())
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "plasm: lowering to IR\n")
	}
	module := irbuild.BuildModule(prog, st, tc.Types)

	if verbose {
		fmt.Fprintln(os.Stderr, "plasm: dumping IR")
		fmt.Fprintln(os.Stderr, module.Dump())
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "plasm: running optimisation passes\n")
	}
	pass.DefaultPipeline().Run(module)

	text := wat.Text(module)
	if verbose {
		fmt.Fprintln(os.Stderr, "plasm: generated WAT:")
		fmt.Fprintln(os.Stderr, text)
		fmt.Fprintln(os.Stderr, spew.Sdump(st))
	}

	return text, st, nil
}

// runWat2Wasm shells out to a wat2wasm binary on PATH. Its absence is
// reported to the caller. build treats it as a warning, since the .wat
// file is already written; run treats it as fatal, since there is no
// .wasm file to execute.
func runWat2Wasm(watPath, wasmPath string) error {
	bin, err := exec.LookPath("wat2wasm")
	if err != nil {
		return fmt.Errorf("wat2wasm not found on PATH: %w", err)
	}
	cmd := exec.Command(bin, watPath, "-o", wasmPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
