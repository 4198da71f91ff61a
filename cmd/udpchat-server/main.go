package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"

	"github.com/udpchat/udpchat"
	"github.com/udpchat/udpchat/chat"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
	Host    string `long:"host" description:"Host to listen on. Overrides UDPCHAT_HOST."`
	Port    int    `long:"port" description:"Port to listen on. Overrides UDPCHAT_PORT."`
	Log     string `long:"log" description:"Write chat log to this file."`
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

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose > len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logger := golog.New(os.Stderr, logLevel)
	udpchat.SetLogger(logger)

	if logLevel == log.Debug {
		// Enable logging from submodules
		chat.SetLogger(os.Stderr)
	}

	config, err := udpchat.LoadConfig()
	if err != nil {
		fail(2, "Couldn't load config: %v\n", err)
	}
	if options.Host != "" {
		config.Host = options.Host
	}
	if options.Port != 0 {
		config.Port = options.Port
	}

	s, err := udpchat.ListenServer(config)
	if err != nil {
		fail(3, "Failed to listen on socket: %v\n", err)
	}

	if options.Log == "-" {
		s.SetLogging(os.Stdout)
	} else if options.Log != "" {
		fp, err := os.OpenFile(options.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fail(4, "Failed to open log file for writing: %v\n", err)
		}
		s.SetLogging(fp)
	}

	fmt.Printf("Listening for chat on %v\n", s.Addr())

	// Construct interrupt handler
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig // Wait for ^C signal
		fmt.Fprintln(os.Stderr, "Interrupt signal detected, shutting down.")
		s.Close()
	}()

	s.Serve()
}
