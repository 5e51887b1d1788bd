/*

A simple CLI app to decode the text archives embedded in a game cartridge
image, given a command database and a file index, and print them as JSON.

*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/textpetgo/msgarc/command"
	"github.com/textpetgo/msgarc/container"
	"github.com/textpetgo/msgarc/dbfile"
	"github.com/textpetgo/msgarc/parser"
	"github.com/textpetgo/msgarc/script"
)

const (
	appName    = "msgarc"
	appVersion = "v0.1.0"
	appHome    = "https://github.com/textpetgo/msgarc"
)

const (
	ExitCodeMissingArguments  = 1
	ExitCodeFailedToLoadDB    = 2
	ExitCodeFailedToLoadIndex = 3
	ExitCodeFailedToReadFile  = 4
	ExitCodeFailedToParse     = 5
	ExitCodeFailedToWriteOut  = 6
)

var (
	version = flag.Bool("version", false, "print version info and exit")

	dbPath     = flag.String("db", "", "path to a JSON command database file (required)")
	indexPath  = flag.String("fileindex", "", "path to a file-index text file (required)")
	ignoreSync = flag.Bool("ignorepointersync", false, "reposition to the declared offset instead of failing on pointer desync")
	outFile    = flag.String("outfile", "", "optional output file name")
	indent     = flag.Bool("indent", true, "use indentation when formatting output")
)

func main() {
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) < 1 || *dbPath == "" || *indexPath == "" {
		printUsage()
		os.Exit(ExitCodeMissingArguments)
	}

	db, err := dbfile.Load(*dbPath)
	if err != nil {
		fmt.Printf("Failed to load command database: %v\n", err)
		os.Exit(ExitCodeFailedToLoadDB)
	}

	fi, err := loadFileIndex(*indexPath)
	if err != nil {
		fmt.Printf("Failed to load file index: %v\n", err)
		os.Exit(ExitCodeFailedToLoadIndex)
	}

	file, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", args[0], err)
		os.Exit(ExitCodeFailedToReadFile)
	}

	rd := script.NewReader(command.NewCommandReader(db))
	res, err := parser.Parse(file, fi, rd, parser.Config{IgnorePointerSyncErrors: *ignoreSync})
	if err != nil {
		fmt.Printf("Failed to parse: %v\n", err)
		os.Exit(ExitCodeFailedToParse)
	}

	destination := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Printf("Failed to create output file: %v\n", err)
			os.Exit(ExitCodeFailedToWriteOut)
		}
		defer func() {
			if err := f.Close(); err != nil {
				panic(err)
			}
		}()
		destination = f
	}

	enc := json.NewEncoder(destination)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
	}
}

func loadFileIndex(path string) (*container.FileIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return container.Parse(string(data))
}

func printVersion() {
	fmt.Println(appName, "version:", appVersion)
	fmt.Println("Platform:", runtime.GOOS, runtime.GOARCH)
	fmt.Println("Built with:", runtime.Version())
	fmt.Println("Home page:", appHome)
}

func printUsage() {
	fmt.Println("Usage:")
	name := os.Args[0]
	fmt.Printf("\t%s -db commands.json -fileindex index.txt [FLAGS] romfile.gba\n", name)
	fmt.Println("\tRun with '-h' to see a list of available flags.")
}
