// Command rendererctl drives a renderer.Supervisor against a real child
// process, for manual exercising of the launch/rendezvous/exec_command path
// without a full IME frontend attached.
package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nozomi-ime/ime-core/ipc"
	"github.com/nozomi-ime/ime-core/renderer"
	"github.com/nozomi-ime/ime-core/xlog"
)

func main() {
	var opts struct {
		Config string `short:"c" long:"config" description:"Path to a supervisor YAML config" value-name:"path" required:"true"`
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[option...]"
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	xlog.Init()

	cfg, err := renderer.LoadConfig(opts.Config)
	if err != nil {
		log.Fatalf("rendererctl: load config: %v", err)
	}

	metrics := renderer.NewMetrics(prometheus.DefaultRegisterer)
	launcher := renderer.NewDefaultLauncher(ipc.OSSpawner{})
	onFatal := func(reason renderer.FatalReason) {
		slog.Error("rendererctl: supervisor reported fatal", "reason", reason)
	}

	sup := renderer.NewSupervisor(cfg, ipc.NewUnixClient, launcher, nil, nil, onFatal)
	sup.SetMetrics(metrics)
	defer sup.Close()

	fmt.Println("rendererctl ready. Commands: show, hide, activate, shutdown, status, quit")
	runREPL(sup)
}

func runREPL(sup *renderer.Supervisor) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "show":
			sup.ExecCommand(ipc.Command{Type: ipc.UPDATE, Visible: true, HasOutput: true})
		case "hide":
			sup.ExecCommand(ipc.Command{Type: ipc.UPDATE, Visible: false, HasOutput: false})
		case "activate":
			sup.Activate()
		case "shutdown":
			force := len(fields) > 1 && fields[1] == "force"
			sup.Shutdown(force)
		case "status":
			fmt.Println(sup.Status())
		case "sleep":
			if len(fields) > 1 {
				if ms, err := strconv.Atoi(fields[1]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
