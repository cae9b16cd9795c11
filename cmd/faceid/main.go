// Copyright 2025 CoreHive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/corehive/faceid"
	"github.com/corehive/faceid/config"
	"github.com/corehive/faceid/facerec"
)

func main() {
	app := &cli.App{
		Name:  "faceid",
		Usage: "Face recognition identity service for multi-tenant employee enrollment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Register an employee's face from an image file",
				ArgsUsage: "<org-id> <employee-id> <image-file>",
				Action:    registerCommand,
			},
			{
				Name:      "identify",
				Usage:     "Identify the employee in an image",
				ArgsUsage: "<org-id> <image-file>",
				Action:    identifyCommand,
			},
			{
				Name:      "verify",
				Usage:     "Verify an image against a claimed employee identity",
				ArgsUsage: "<org-id> <employee-id> <image-file>",
				Action:    verifyCommand,
			},
			{
				Name:      "deregister",
				Usage:     "Remove an employee's registration",
				ArgsUsage: "<org-id> <employee-id>",
				Action:    deregisterCommand,
			},
			{
				Name:      "status",
				Usage:     "Show an employee's enrollment status",
				ArgsUsage: "<org-id> <employee-id>",
				Action:    statusCommand,
			},
			{
				Name:      "stats",
				Usage:     "Show enrollment statistics for an organization",
				ArgsUsage: "<org-id>",
				Action:    statsCommand,
			},
			{
				Name:   "warmup",
				Usage:  "Preload every organization's collection into the cache",
				Action: warmupCommand,
			},
			{
				Name:   "info",
				Usage:  "Show the service configuration",
				Action: infoCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openSystem loads config from the environment and assembles the stack.
func openSystem(ctx context.Context) (*faceid.System, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	system, err := faceid.NewSystem(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open system: %w", err)
	}
	return system, nil
}

func registerCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: register <org-id> <employee-id> <image-file>")
	}
	orgID, employeeID, imagePath := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Service().Register(ctx, orgID, employeeID, image)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Registered %s in %s", result.EmployeeID, result.OrganizationID)
	if result.Replaced {
		fmt.Print(" (replaced previous registration)")
	}
	fmt.Println()
	return nil
}

func identifyCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: identify <org-id> <image-file>")
	}
	orgID, imagePath := c.Args().Get(0), c.Args().Get(1)

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Service().Identify(ctx, orgID, image)
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}

	switch result.Outcome {
	case facerec.OutcomeMatched:
		fmt.Printf("Matched %s (score %.3f, threshold %.2f, %d candidates)\n",
			result.EmployeeID, result.Score, result.Threshold, result.Candidates)
	case facerec.OutcomeNoFace:
		fmt.Println("No face detected in image")
	case facerec.OutcomeNoRegisteredEmployees:
		fmt.Println("Organization has no registered employees")
	default:
		fmt.Printf("No match (best score %.3f, threshold %.2f, %d candidates)\n",
			result.Score, result.Threshold, result.Candidates)
	}
	return nil
}

func verifyCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: verify <org-id> <employee-id> <image-file>")
	}
	orgID, employeeID, imagePath := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Service().Verify(ctx, orgID, employeeID, image)
	if err != nil {
		if errors.Is(err, facerec.ErrNotRegistered) {
			fmt.Printf("Employee %s is not registered\n", employeeID)
			return nil
		}
		return fmt.Errorf("verification failed: %w", err)
	}

	if result.Verified {
		fmt.Printf("Verified %s (score %.3f, threshold %.2f)\n",
			result.EmployeeID, result.Score, result.Threshold)
	} else {
		fmt.Printf("Not verified (score %.3f, threshold %.2f)\n",
			result.Score, result.Threshold)
	}
	return nil
}

func deregisterCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: deregister <org-id> <employee-id>")
	}
	orgID, employeeID := c.Args().Get(0), c.Args().Get(1)

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Service().Deregister(ctx, orgID, employeeID)
	if err != nil {
		return fmt.Errorf("deregistration failed: %w", err)
	}

	fmt.Printf("Deregistered %s from %s (%d remaining)\n",
		result.EmployeeID, result.OrganizationID, result.Remaining)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: status <org-id> <employee-id>")
	}
	orgID, employeeID := c.Args().Get(0), c.Args().Get(1)

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	info, err := system.Service().Status(ctx, orgID, employeeID)
	if err != nil {
		return fmt.Errorf("status lookup failed: %w", err)
	}

	fmt.Printf("Employee:   %s\n", info.EmployeeID)
	fmt.Printf("Registered: %t\n", info.Registered)
	if info.Registered {
		fmt.Printf("Since:      %s\n", info.RegisteredAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("Dimension:  %d\n", info.EmbeddingDim)
	}
	fmt.Printf("Photo:      %t\n", info.PhotoExists)
	return nil
}

func statsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: stats <org-id>")
	}
	orgID := c.Args().Get(0)

	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	stats, err := system.Service().Stats(ctx, orgID)
	if err != nil {
		return fmt.Errorf("stats lookup failed: %w", err)
	}

	fmt.Printf("Organization: %s\n", stats.OrganizationID)
	fmt.Printf("Employees:    %d\n", stats.EmployeeCount)
	for _, id := range stats.EmployeeIDs {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func warmupCommand(c *cli.Context) error {
	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	if err := system.Warmup(ctx); err != nil {
		return fmt.Errorf("warmup failed: %w", err)
	}
	fmt.Println("Warmup complete")
	return nil
}

func infoCommand(c *cli.Context) error {
	ctx := context.Background()
	system, err := openSystem(ctx)
	if err != nil {
		return err
	}
	defer system.Close()

	info := system.Service().Info()
	fmt.Printf("Model:     %s\n", info.Model)
	fmt.Printf("Dimension: %d\n", info.EmbeddingDim)
	fmt.Printf("Threshold: %.2f\n", info.Threshold)
	return nil
}
