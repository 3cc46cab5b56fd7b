// Package main provides the ndarray CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/born-ml/ndarray/nd"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func usage() {
	fmt.Fprintf(os.Stderr, "ndarray %s - N-dimensional arrays for Go\n\n", version)
	fmt.Fprintln(os.Stderr, "Usage: ndarray [flags] <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version              Show version")
	fmt.Fprintln(os.Stderr, "  devices              List devices and their memory usage")
	fmt.Fprintln(os.Stderr, "  inspect <file>       Print the tensors stored in a .ndar file")
	fmt.Fprintln(os.Stderr, "  bench-matmul [-n N]  Time an N×N host matrix product")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Printf("ndarray %s\n", version)
	case "devices":
		err = nd.DumpDevices(os.Stdout)
	case "inspect":
		err = inspect(args[1:])
	case "bench-matmul":
		err = benchMatMul(args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		klog.Fatalf("%s: %+v", args[0], err)
	}
}

func inspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	values := fs.Bool("values", true, "Print tensor values.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one file")
	}
	path := fs.Arg(0)

	tensors, header, err := nd.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: format v%d written by %s at %s\n", path, header.FormatVersion, header.Library,
		header.CreatedAt.Format(time.RFC3339))
	keys := make([]string, 0, len(header.Metadata))
	for k := range header.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %s\n", k, header.Metadata[k])
	}
	for _, meta := range header.Tensors {
		t := tensors[meta.Name]
		fmt.Printf("%s: shape %v on %s, %s elements (%s)\n", meta.Name, t.Shape(), t.Device(),
			humanize.Comma(int64(t.Size())), humanize.Bytes(uint64(meta.Size)))
		if *values {
			fmt.Printf("  %v\n", t)
		}
		t.Release()
	}
	return nil
}

func benchMatMul(args []string) error {
	fs := flag.NewFlagSet("bench-matmul", flag.ExitOnError)
	n := fs.Int("n", 512, "Matrix size.")
	reps := fs.Int("reps", 3, "Number of timed repetitions.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 || *reps <= 0 {
		return errors.Errorf("-n and -reps must be positive, got %d and %d", *n, *reps)
	}

	shape := nd.Shape{*n, *n}
	a, err := nd.StandardNormal(shape, nd.WithDevice(nd.Host))
	if err != nil {
		return err
	}
	defer a.Release()
	b, err := nd.StandardNormal(shape, nd.WithDevice(nd.Host))
	if err != nil {
		return err
	}
	defer b.Release()

	best := time.Duration(0)
	for i := 0; i < *reps; i++ {
		start := time.Now()
		c, err := nd.MatMul(a, b)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		c.Release()
		klog.V(1).Infof("run %d: %s", i, elapsed)
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}
	flops := 2 * float64(*n) * float64(*n) * float64(*n)
	fmt.Printf("matmul %d×%d: best of %d in %s (%sFLOP/s)\n", *n, *n, *reps, best,
		humanize.SIWithDigits(flops/best.Seconds(), 2, ""))
	return nil
}
