package main

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/wireproto"
)

func newStatusCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Connect to a running rig server and print its current jig and scenario",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			return printStatus(app, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to wait for the server's initial greeting")
	return cmd
}

// printStatus connects to the configured TCP address as a plain
// interface, requests a greeting, and prints the HELLO/JIG/SCENARIO
// lines that come back. The connection is closed as soon as the
// scenario line arrives.
func printStatus(app *App, timeout time.Duration) error {
	addr := app.Config.TCPAddr
	if addr == "" {
		return fmt.Errorf("no tcpAddr configured")
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	// The server also sends a greeting unasked the moment this
	// connection's interface unit activates, but asking explicitly
	// means `status` works the same way against a server that only
	// greets on request.
	if _, err := fmt.Fprintln(conn, wireproto.EncodeControl(event.ContentsInitialGreeting())); err != nil {
		return fmt.Errorf("request greeting: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	var sawScenario bool
	for scanner.Scan() {
		msg, err := wireproto.DecodeStatus(scanner.Text())
		if err != nil {
			continue
		}
		switch msg.Kind {
		case event.MsgHello:
			fmt.Printf("%s %s\n", color.CyanString("server"), msg.ServerID)
		case event.MsgJig:
			fmt.Printf("%s %s\n", color.CyanString("jig"), msg.JigName.ID())
		case event.MsgScenario:
			sawScenario = true
			if msg.HasScenarioName {
				fmt.Printf("%s %s\n", color.CyanString("scenario"), msg.ScenarioName.ID())
			} else {
				fmt.Printf("%s %s\n", color.CyanString("scenario"), color.YellowString("none"))
			}
		}
		if sawScenario {
			return nil
		}
	}
	return scanner.Err()
}
