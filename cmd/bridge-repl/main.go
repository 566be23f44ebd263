package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/anooppoommen/libsignal-client/bridge"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/hostjs"
)

func main() {
	var (
		expr        = flag.String("e", "", "Evaluate a single JS expression and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose bridge logging (full-buffer checksums)")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	bridge.SetLogger(logger)

	rt, err := newDemoRuntime(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	if *expr != "" {
		out, err := rt.EvalString(*expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	if *interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := runInteractive(rt); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runPlain(rt)
}

// runPlain reads JS lines from stdin and prints results, for piped input
// and non-terminal sessions.
func runPlain(rt *hostjs.Runtime) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		out, err := rt.EvalString(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

// accumulator is the demo native type: a mutable native value reached
// through wrapper handles.
type accumulator struct {
	sum int64
}

// identityError is the demo native error carrying a conflicting identity.
type identityError struct {
	name string
}

func (e *identityError) Error() string {
	return fmt.Sprintf("untrusted identity: %s", e.name)
}

func (e *identityError) ConflictingIdentity() string {
	return e.name
}

// newDemoRuntime starts a JS host with a handful of bridged native
// functions covering each conversion contract.
func newDemoRuntime(logger *zap.Logger) (*hostjs.Runtime, error) {
	rt, err := hostjs.New(hostjs.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	// add(a, b): synchronous scalar round trip.
	err = rt.RegisterFunc("add", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.U32{}, func(s *bridge.Scope) (uint32, error) {
			a, err := bridge.Borrow(s, bridge.Arg[uint32](bridge.U32{}), arg(cx, args, 0))
			if err != nil {
				return 0, err
			}
			b, err := bridge.Borrow(s, bridge.Arg[uint32](bridge.U32{}), arg(cx, args, 1))
			if err != nil {
				return 0, err
			}
			return a.Load() + b.Load(), nil
		})
	})
	if err != nil {
		return nil, err
	}

	// reverse(buf): synchronous zero-copy buffer borrow.
	err = rt.RegisterFunc("reverse", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.BufferResult{}, func(s *bridge.Scope) ([]byte, error) {
			data, err := bridge.Borrow(s, bridge.ArgType[[]byte](bridge.Bytes{}), arg(cx, args, 0))
			if err != nil {
				return nil, err
			}
			in := data.Load()
			out := make([]byte, len(in))
			for i, b := range in {
				out[len(in)-1-i] = b
			}
			return out, nil
		})
	})
	if err != nil {
		return nil, err
	}

	// reverseAsync(buf): the asynchronous protocol end to end.
	err = rt.RegisterFunc("reverseAsync", func(cx *host.Context, args []host.Value) (host.Value, error) {
		call := bridge.NewAsyncCall(cx)
		defer call.Close()
		data, err := bridge.SaveArg(call, bridge.AsyncArgType[[]byte](bridge.Bytes{}), arg(cx, args, 0))
		if err != nil {
			return nil, bridge.ToException(cx, err)
		}
		return bridge.RunAsync(call, bridge.BufferResult{}, func() ([]byte, error) {
			in := data.Load()
			out := make([]byte, len(in))
			for i, b := range in {
				out[len(in)-1-i] = b
			}
			return out, nil
		})
	})
	if err != nil {
		return nil, err
	}

	// accumulatorNew/Add/Sum: opaque handles with run-time borrow checks.
	err = rt.RegisterFunc("accumulatorNew", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.WrappedMutable[accumulator](), func(s *bridge.Scope) (accumulator, error) {
			return accumulator{}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	err = rt.RegisterFunc("accumulatorAdd", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.Unit{}, func(s *bridge.Scope) (struct{}, error) {
			acc, err := bridge.Borrow(s, bridge.HandleMut[accumulator](), arg(cx, args, 0))
			if err != nil {
				return struct{}{}, err
			}
			v, err := bridge.Borrow(s, bridge.Arg[int64](bridge.I64{}), arg(cx, args, 1))
			if err != nil {
				return struct{}{}, err
			}
			acc.Load().sum += v.Load()
			return struct{}{}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	err = rt.RegisterFunc("accumulatorSum", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.I64{}, func(s *bridge.Scope) (int64, error) {
			acc, err := bridge.Borrow(s, bridge.Handle[accumulator](), arg(cx, args, 0))
			if err != nil {
				return 0, err
			}
			return acc.Load().sum, nil
		})
	})
	if err != nil {
		return nil, err
	}

	// failUntrusted(name): structured error mapping.
	err = rt.RegisterFunc("failUntrusted", func(cx *host.Context, args []host.Value) (host.Value, error) {
		return bridge.Call(cx, bridge.Unit{}, func(s *bridge.Scope) (struct{}, error) {
			name, err := bridge.Borrow(s, bridge.Arg[string](bridge.Str{}), arg(cx, args, 0))
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, &identityError{name: name.Load()}
		})
	})
	if err != nil {
		return nil, err
	}

	if err := installErrorClasses(rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// installErrorClasses defines the demo exception classes in JS and
// registers them with the bridge.
func installErrorClasses(rt *hostjs.Runtime) error {
	setup := `
		class UntrustedIdentityError extends Error {
			constructor(name) {
				super("untrusted identity: " + name);
				this.name = "UntrustedIdentityError";
				this.identity = name;
			}
		}
		class SealedSenderSelfSend extends Error {
			constructor(message) {
				super(message);
				this.name = "SealedSenderSelfSend";
			}
		}
		globalThis.__errors = {
			UntrustedIdentityError: UntrustedIdentityError,
			SealedSenderSelfSend: SealedSenderSelfSend,
		};
		undefined;
	`
	if err := rt.Eval(setup); err != nil {
		return err
	}
	return rt.RegisterErrorClasses("__errors")
}

// arg fetches the i-th call argument, defaulting to undefined like the
// host would.
func arg(cx *host.Context, args []host.Value, i int) host.Value {
	if i < len(args) {
		return args[i]
	}
	return cx.Runtime().Undefined()
}
