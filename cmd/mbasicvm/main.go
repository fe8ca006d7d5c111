// Command mbasicvm executes an image produced by mbasicc, the run half of
// the two-command split spec.md section 6 describes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/dmbetz/mbasic/internal/host"
	"github.com/dmbetz/mbasic/isa"
	"github.com/dmbetz/mbasic/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <image>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	debug := flag.Bool("debug", false, "print the full error stack on failure and log stores to TEXT addresses")
	trace := flag.Bool("trace", false, "disassemble each instruction to stderr before it executes")
	noRaw := flag.Bool("noraw", false, "disable raw terminal input")
	stackSize := flag.Int("stack", 0, "stack depth in cells (0 uses the default)")
	stats := flag.Bool("stats", false, "print instruction count on exit")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}
	os.Exit(run(flag.Arg(0), *debug, *trace, *noRaw, *stackSize, *stats))
}

func run(imgName string, debug, trace, noRaw bool, stackSize int, stats bool) int {
	f, err := os.Open(imgName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	hdr, text, data, err := vm.LoadImage(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var tearRaw func()
	if !noRaw && term.IsTerminal(int(os.Stdin.Fd())) {
		tearRaw, err = host.SetRawIO(int(os.Stdin.Fd()))
		// raw IO is a nicety, not a requirement: fall back to line-buffered
		// input on platforms or terminals that refuse it.
		if err != nil {
			tearRaw = nil
		}
	}
	console := host.New(os.Stdin, os.Stdout, tearRaw)
	defer console.Close()

	var opts []vm.Option
	if stackSize > 0 {
		opts = append(opts, vm.StackSize(stackSize))
	}
	if debug {
		opts = append(opts, vm.Logger(log.New(os.Stderr, "mbasicvm: ", 0)))
	}
	in, err := vm.New(hdr, text, data, console, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if trace {
		err = runTraced(in, text)
	} else {
		err = in.Run()
	}
	console.Flush()

	if err != nil {
		if debug {
			fmt.Fprintf(os.Stderr, "\n%+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		}
		return 1
	}
	if stats {
		fmt.Fprintf(os.Stderr, "executed %d instructions\n", in.InstructionCount())
	}
	return 0
}

// runTraced disassembles each instruction at the instance's current PC
// just before executing it via Step, so the log interleaves correctly
// with whatever the program prints through the host.
func runTraced(in *vm.Instance, text []byte) error {
	for {
		_, s := isa.Disassemble(text, in.PC)
		fmt.Fprintf(os.Stderr, "%6d  %s\n", in.PC, s)
		halted, err := in.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}
