package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/p-maje/inz-wasm-compiler/wat"
)

type Runner struct {
	logger *zap.Logger
}

type Option func(*Runner)

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run assembles watText, wires the "imports" host module to stdin and
// stdout, and calls the exported main function. Reads consume
// whitespace-separated tokens from stdin; at end of input a read
// returns zero. Each written value goes to stdout on its own line.
//
// The module imports "write" twice, once per value type. Wazero keys
// host exports by name, so the assembler renames the colliding imports
// before instantiation.
func (r *Runner) Run(ctx context.Context, watText string, stdin io.Reader, stdout io.Writer) error {
	wasm, err := wat.Compile(watText, wat.UniqueImportNames())
	if err != nil {
		return fmt.Errorf("assemble module: %w", err)
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	in := bufio.NewScanner(stdin)
	in.Split(bufio.ScanWords)

	_, err = rt.NewHostModuleBuilder("imports").
		NewFunctionBuilder().WithFunc(func(v int32) {
			fmt.Fprintln(stdout, v)
		}).Export("write_i32").
		NewFunctionBuilder().WithFunc(func(v float32) {
			fmt.Fprintln(stdout, v)
		}).Export("write_f32").
		NewFunctionBuilder().WithFunc(func() int32 {
			return r.readInt(in)
		}).Export("readInt").
		NewFunctionBuilder().WithFunc(func() float32 {
			return r.readFloat(in)
		}).Export("readFloat").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate host module: %w", err)
	}

	mod, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		return fmt.Errorf("instantiate module: %w", err)
	}
	defer mod.Close(ctx)

	main := mod.ExportedFunction("main")
	if main == nil {
		return fmt.Errorf("module does not export main")
	}

	r.logger.Debug("running module", zap.Int("wasm_bytes", len(wasm)))
	if _, err := main.Call(ctx); err != nil {
		return fmt.Errorf("run main: %w", err)
	}
	return nil
}

func (r *Runner) readInt(in *bufio.Scanner) int32 {
	if !in.Scan() {
		return 0
	}
	v, err := strconv.ParseInt(in.Text(), 10, 32)
	if err != nil {
		r.logger.Warn("bad integer input", zap.String("token", in.Text()))
		return 0
	}
	return int32(v)
}

func (r *Runner) readFloat(in *bufio.Scanner) float32 {
	if !in.Scan() {
		return 0
	}
	v, err := strconv.ParseFloat(in.Text(), 32)
	if err != nil {
		r.logger.Warn("bad float input", zap.String("token", in.Text()))
		return 0
	}
	return float32(v)
}
