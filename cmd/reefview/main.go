package main

import (
	"flag"
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "enhance":
		err = runEnhance(args)
	case "export":
		err = runExport(args)
	case "motion":
		err = runMotion(args, os.Stdout)
	case "stats":
		err = runStats(args, os.Stdout)
	case "version":
		fmt.Printf("reefview version %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`reefview - underwater image enhancement

Usage: reefview <command> [options]

Commands:
  enhance    Correct a single image with a preset or the auto-correction
  export     Correct every frame of a video or image directory
  motion     Report moving regions in a video as JSON lines
  stats      Print per-channel median and spread of an image
  version    Show reefview version
  help       Show this help message

Common Flags:
  --preset <file>      YAML preset with correction parameters
  --log-level <level>  debug, info, warn or error (default: preset or info)

Examples:
  reefview enhance --in dive.png --out dive_fixed.png --preset murky.yaml
  reefview enhance --in dive.png --out dive_auto.png --auto --hist hist.html
  reefview export --in transect.mp4 --out transect_fixed.avi --workers 4
  reefview motion --in transect.mp4 --min-area 200`)
}
