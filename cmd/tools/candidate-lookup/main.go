// cmd/tools/candidate-lookup/main.go
//
// Interactive duplicate-check probe. Type candidate details and the tool
// runs the same duplicate detection the submission flow uses, debounced so
// rapid edits only fire one query. Input format per line:
//
//	email[,phone[,first last]]
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"vms-workers/internal/common/config"
	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/debounce"
	checkduplicate "vms-workers/internal/workers/candidate/check-duplicate"
)

const quietInterval = 500 * time.Millisecond

func main() {
	zapLog := logger.New("warn", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres connection failed: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Ping(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "postgres ping failed: %v\n", err)
		os.Exit(1)
	}

	handler := checkduplicate.NewHandler(
		checkduplicate.LoadConfig(),
		pg.DB,
		logger.NewZapAdapter(zapLog),
	)

	deb := debounce.New(quietInterval)
	defer deb.Stop()
	var guard debounce.Guard

	fmt.Println("candidate-lookup: email[,phone[,first last]] per line, Ctrl-D to quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		input := parseLine(line)
		token := guard.Next()

		deb.Trigger(func(_ debounce.Token) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			output, err := handler.Execute(ctx, input)

			// A slower earlier lookup must not print over a newer one.
			if !guard.Accept(token) {
				return
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
				return
			}
			printResult(output)
		})
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stdin read failed: %v\n", err)
		os.Exit(1)
	}

	// Let a pending debounced lookup finish before exiting.
	time.Sleep(quietInterval * 2)
}

func parseLine(line string) *checkduplicate.Input {
	parts := strings.SplitN(line, ",", 3)
	input := &checkduplicate.Input{Email: strings.TrimSpace(parts[0])}

	if len(parts) > 1 {
		input.Phone = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		name := strings.Fields(strings.TrimSpace(parts[2]))
		if len(name) > 0 {
			input.FirstName = name[0]
		}
		if len(name) > 1 {
			input.LastName = strings.Join(name[1:], " ")
		}
	}
	return input
}

func printResult(output *checkduplicate.Output) {
	if !output.IsDuplicate {
		fmt.Println("clean: no matching candidate")
		return
	}

	pretty, err := json.MarshalIndent(output.Duplicate, "", "  ")
	if err != nil {
		fmt.Printf("duplicate: %+v\n", output.Duplicate)
		return
	}
	fmt.Printf("duplicate:\n%s\n", pretty)
}
