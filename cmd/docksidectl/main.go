// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// docksidectl is a command-line tool for controlling a running dockside
// instance.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fleetops/dockside/cmd/docksidectl/logs"
	"github.com/fleetops/dockside/pkg/client"
)

var (
	version    = "0.1"
	apiURL     = "http://localhost:8080"
	jsonOutput = false

	apiClient *client.Client
)

func main() {
	if env := os.Getenv("DOCKSIDE_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	var filteredArgs []string
	for _, arg := range os.Args[1:] {
		if arg == "-json" {
			jsonOutput = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	apiClient = client.New(apiURL)

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := filteredArgs[0]
	args := filteredArgs[1:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus(args)
	case "start":
		err = cmdPower(args, apiClient.Services.Start)
	case "stop":
		err = cmdPower(args, apiClient.Services.Stop)
	case "restart":
		err = cmdPower(args, apiClient.Services.Restart)
	case "logs":
		err = cmdLogs(args)
	case "config":
		err = cmdConfig(args)
	case "version", "-v", "--version":
		fmt.Printf("docksidectl %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docksidectl - Control a running dockside instance

Usage:
  docksidectl [-json] <command> [arguments]

Environment:
  DOCKSIDE_API   Base URL of the dockside API (default: http://localhost:8080)

Commands:
  status [service]          Show status of all services or one service
  start <service>           Bring a service up
  stop <service>            Bring a service down
  restart <service>         Restart a service

  logs files <service>                       List a service's log files
  logs read <service> <file> [-start N] [-num N]
  logs search <service> <file> [-from T] [-to T] [-grep P] [-limit N] [-offset N]
  logs follow <service> <file> [-grep P]     Stream a log file live

  config get <service>          Show manifest version and environment
  config data <service>         Print the raw docker-compose.yml
  config set-env <service> KEY=VALUE [KEY=VALUE ...]

  version                   Show version
  help                      Show this help`)
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func cmdStatus(args []string) error {
	ctx := context.Background()

	if len(args) > 0 {
		name := args[0]
		status, err := apiClient.Services.Status(ctx, name)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(status)
			return nil
		}
		fmt.Printf("%-20s %s\n", name, status.Status)
		return nil
	}

	names, err := apiClient.Services.List(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(names)
		return nil
	}
	for _, name := range names {
		status, err := apiClient.Services.Status(ctx, name)
		state := "?"
		if err == nil {
			state = status.Status
		}
		fmt.Printf("%-20s %s\n", name, state)
	}
	return nil
}

func cmdPower(args []string, action func(context.Context, string) (*client.PowerResult, error)) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docksidectl <start|stop|restart> <service>")
	}
	result, err := action(context.Background(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(result)
		return nil
	}
	fmt.Println(result.Message)
	if !result.Success {
		return fmt.Errorf("action failed")
	}
	return nil
}

func cmdLogs(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docksidectl logs <files|read|search|follow> <service> [args]")
	}
	subcmd, rest := args[0], args[1:]
	switch subcmd {
	case "files":
		return cmdLogsFiles(rest)
	case "read":
		return cmdLogsRead(rest)
	case "search":
		return cmdLogsSearch(rest)
	case "follow":
		return cmdLogsFollow(rest)
	default:
		return fmt.Errorf("unknown logs subcommand: %s", subcmd)
	}
}

func cmdLogsFiles(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docksidectl logs files <service>")
	}
	files, err := apiClient.Logs.Files(context.Background(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(files)
		return nil
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func cmdLogsRead(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docksidectl logs read <service> <file> [-start N] [-num N]")
	}
	service, file := args[0], args[1]
	start, num := 0, 100
	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "-start":
			i++
			if i >= len(args) {
				return fmt.Errorf("-start requires a value")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid -start value: %s", args[i])
			}
			start = n
		case "-num":
			i++
			if i >= len(args) {
				return fmt.Errorf("-num requires a value")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid -num value: %s", args[i])
			}
			num = n
		}
	}

	lines, err := apiClient.Logs.Read(context.Background(), service, file, start, num)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(lines)
		return nil
	}
	return logs.FormatLines(os.Stdout, lines, logs.FormatPlain)
}

func cmdLogsSearch(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docksidectl logs search <service> <file> [-from T] [-to T] [-grep P] [-limit N] [-offset N]")
	}
	service, file := args[0], args[1]
	opts := client.SearchOptions{Limit: 1000}

	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "-from":
			i++
			t, err := logs.ParseTimeArg(args[i])
			if err != nil {
				return err
			}
			opts.From = t
		case "-to":
			i++
			t, err := logs.ParseTimeArg(args[i])
			if err != nil {
				return err
			}
			opts.To = t
		case "-grep":
			i++
			opts.Substring = args[i]
		case "-limit":
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid -limit value: %s", args[i])
			}
			opts.Limit = n
		case "-offset":
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid -offset value: %s", args[i])
			}
			opts.Offset = n
		}
	}

	result, err := apiClient.Logs.Search(context.Background(), service, file, opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(result)
		return nil
	}
	if err := logs.FormatLines(os.Stdout, result.Lines, logs.FormatPlain); err != nil {
		return err
	}
	fmt.Printf("(%d of %d matching lines)\n", len(result.Lines), result.Total)
	return nil
}

func cmdLogsFollow(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docksidectl logs follow <service> <file> [-grep P]")
	}
	service, file := args[0], args[1]
	substring := ""
	for i := 2; i < len(args); i++ {
		if args[i] == "-grep" && i+1 < len(args) {
			i++
			substring = args[i]
		}
	}

	conn, err := apiClient.Logs.Follow(context.Background(), service, file, substring)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		var msg struct {
			Line string `json:"line"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}
		fmt.Println(msg.Line)
	}
}

func cmdConfig(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docksidectl config <get|data|set-env> <service> [args]")
	}
	subcmd, service, rest := args[0], args[1], args[2:]
	ctx := context.Background()

	switch subcmd {
	case "get":
		cfg, err := apiClient.Config.Get(ctx, service)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(cfg)
			return nil
		}
		fmt.Printf("Manifest version: %s\n", cfg.ManifestVersion)
		for k, v := range cfg.Env {
			fmt.Printf("%s=%s\n", k, v)
		}
		return nil
	case "data":
		data, err := apiClient.Config.GetData(ctx, service)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "set-env":
		if len(rest) == 0 {
			return fmt.Errorf("usage: docksidectl config set-env <service> KEY=VALUE [KEY=VALUE ...]")
		}
		envData := make(map[string]string, len(rest))
		for _, pair := range rest {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid KEY=VALUE pair: %s", pair)
			}
			envData[k] = v
		}
		if err := apiClient.Config.SetEnv(ctx, service, envData); err != nil {
			return err
		}
		fmt.Println("Updated environment")
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", subcmd)
	}
}
