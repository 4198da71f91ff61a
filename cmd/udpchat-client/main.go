package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/peterh/liner"

	"github.com/udpchat/udpchat"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
	Name    string `short:"n" long:"name" description:"Nickname to join with. Prompted for if omitted."`

	Args struct {
		Server string `positional-arg-name:"server" description:"Chat server address, host or host:port."`
	} `positional-args:"yes" required:"yes"`
}

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Print(err)
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		return
	}

	numVerbose := len(options.Verbose)
	if numVerbose > len(logLevels) {
		numVerbose = len(logLevels) - 1
	}
	udpchat.SetLogger(golog.New(os.Stderr, logLevels[numVerbose]))

	name := strings.TrimSpace(options.Name)
	if name == "" {
		name = promptName()
	}

	client, err := udpchat.DialClient(options.Args.Server, name)
	if err != nil {
		fail(2, "Failed to reach server: %v\n", err)
	}
	defer client.Close()

	fmt.Printf("Welcome, %s\n", name)
	if err := client.Run(); err != nil {
		fail(3, "Session error: %v\n", err)
	}
	fmt.Println("Disconnected")
}

func promptName() string {
	prompt := liner.NewLiner()
	defer prompt.Close()

	name, err := prompt.Prompt("Your name: ")
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		// Guests get a random tag instead of a collision-prone default.
		return "Guest-" + uuid.NewString()[:8]
	}
	return name
}
