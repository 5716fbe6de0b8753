package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const initContainerTimeout = 60 * time.Second

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var skipDynamo bool

	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new aio project",
		Long:  "Creates project scaffolding and optionally starts a local DynamoDB container.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], skipDynamo)
		},
	}

	cmd.Flags().BoolVar(&skipDynamo, "skip-dynamodb", false, "Skip starting DynamoDB Local container")
	return cmd
}

func runInit(projectName string, skipDynamo bool) error {
	bold := color.New(color.Bold)

	_, _ = bold.Printf("Initializing aio project: %s\n", projectName)

	if err := os.MkdirAll(filepath.Join(projectName, "reports"), 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}

	// Write aio.yaml
	configPath := filepath.Join(projectName, "aio.yaml")
	configContent := `site:
  baseUrl: https://example.com

dynamodb:
  tableName: aio-experiments
  region: us-east-1
  # Local development against DynamoDB Local:
  endpoint: http://localhost:8000
  createTable: true

metrics:
  baseUrl: https://metrics.example.com
  # token: ${METRICS_TOKEN}

cms:
  baseUrl: https://example.com
  username: aio-bot
  # appPassword: ${CMS_APP_PASSWORD}

generator:
  baseUrl: https://generator.example.com
  # token: ${GENERATOR_TOKEN}

# thresholds:
#   minImpressionsForAnalysis: 100
#   minDaysBetweenChanges: 30
#   maxExperimentsPerMonth: 50

reports:
  dir: ./reports

alerts:
  - type: console

server:
  addr: ":3000"

# archiver:
#   enabled: true
#   interval: 6h
#   dsn: postgres://localhost:5432/aio
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("  ✓ Project scaffolded")

	if !skipDynamo {
		if err := startDynamoLocal(); err != nil {
			color.Yellow("  ⚠ DynamoDB setup skipped: %v", err)
			color.Yellow("    Run manually: docker run -d --name aio-dynamodb -p 8000:8000 amazon/dynamodb-local")
		} else {
			color.Green("  ✓ DynamoDB Local container started")
		}
	} else {
		color.Yellow("  → DynamoDB setup skipped (--skip-dynamodb)")
	}

	fmt.Println()
	_, _ = bold.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  aio analyze --dry-run")
	fmt.Println("  aio serve")
	return nil
}

func startDynamoLocal() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker not found in PATH")
	}

	// Reuse an existing container when present
	checkCmd := exec.Command("docker", "inspect", "aio-dynamodb")
	if checkCmd.Run() == nil {
		startCmd := exec.Command("docker", "start", "aio-dynamodb")
		if err := startCmd.Run(); err != nil {
			return fmt.Errorf("starting existing container: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initContainerTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "run", "-d",
		"--name", "aio-dynamodb",
		"-p", "8000:8000",
		"amazon/dynamodb-local",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
