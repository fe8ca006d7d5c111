// Command mbasicc compiles a BASIC source file into a runnable image, the
// compile half of the two-command split spec.md section 6 describes
// (mbasicc / mbasicvm in place of the original's combined tool).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/dmbetz/mbasic/compiler"
	"github.com/dmbetz/mbasic/isa"
	"github.com/dmbetz/mbasic/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <source> <image>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	debug := flag.Bool("debug", false, "print the full error stack on failure")
	dumpImage := flag.Bool("dump-image", false, "disassemble the compiled TEXT segment to stderr")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}
	if err := run(flag.Arg(0), flag.Arg(1), *debug, *dumpImage); err != nil {
		os.Exit(1)
	}
}

// dumpText disassembles text from the first instruction to the last, the
// static equivalent of cmd/mbasicvm's -trace flag: no Instance, no
// registers, just a straight walk of the byte stream with isa.Disassemble.
func dumpText(text []byte) {
	for pc := 0; pc < len(text); {
		next, s := isa.Disassemble(text, pc)
		fmt.Fprintf(os.Stderr, "%6d  %s\n", pc, s)
		if next <= pc {
			break
		}
		pc = next
	}
}

func run(srcName, imgName string, debug, dumpImage bool) error {
	src, err := os.Open(srcName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer src.Close()

	lines := bufio.NewScanner(src)
	getLine := func() (string, bool) {
		if !lines.Scan() {
			return "", false
		}
		return lines.Text(), true
	}

	hdr, text, data, err := compiler.Compile(getLine)
	if err != nil {
		if debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}

	if dumpImage {
		dumpText(text)
	}

	out, err := os.Create(imgName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer out.Close()

	if err := vm.WriteImage(out, hdr, text, data); err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "writing image"))
		return err
	}
	return nil
}
