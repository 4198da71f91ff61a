package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"

	"github.com/udpchat/udpchat"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
	Listen  string `long:"listen" description:"Host and port for the web form." default:"localhost:8080"`
	Server  string `long:"server" description:"Chat server address to forward into." default:"127.0.0.1:5000"`
	Name    string `long:"name" description:"Name prefix messages are posted under." default:"web"`
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

	gateway := udpchat.NewGateway(options.Server, options.Name)

	fmt.Printf("Web interface available at http://%s/\n", options.Listen)
	if err := http.ListenAndServe(options.Listen, gateway); err != nil {
		fail(2, "Web server failed: %v\n", err)
	}
}
