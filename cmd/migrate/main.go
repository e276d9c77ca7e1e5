// cmd/migrate/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/db"
	"github.com/onerilhan/go-loyalty-api/internal/migration"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	cfg := config.LoadConfig()

	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		fmt.Printf("Database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	runner := migration.NewRunner(database, nil)

	switch command {
	case "status":
		handleStatus(runner)
	case "up":
		handleUp(runner)
	case "init":
		handleInit(runner)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Migration CLI Tool

USAGE:
    go run cmd/migrate/main.go <command>

COMMANDS:
    status    Show migration status
    up        Apply pending migrations
    init      Initialize migration system
`)
}

func handleStatus(runner *migration.Runner) {
	migrations, err := runner.GetStatus()
	if err != nil {
		fmt.Printf("Failed to get migration status: %v\n", err)
		os.Exit(1)
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations found")
		return
	}

	fmt.Println("  VERSION          | STATUS   | NAME")
	fmt.Println("  -----------------|----------|--------------------")

	pending := 0
	for _, m := range migrations {
		status := "PENDING"
		appliedAt := ""
		if m.Applied {
			status = "APPLIED"
			if m.AppliedAt != nil {
				appliedAt = fmt.Sprintf(" (%s)", m.AppliedAt.Format("2006-01-02 15:04"))
			}
		} else {
			pending++
		}
		fmt.Printf("  %14d | %-8s | %s%s\n", m.Version, status, m.Name, appliedAt)
	}

	if pending > 0 {
		fmt.Printf("\nYou have %d pending migration(s). Run 'up' to apply them.\n", pending)
	} else {
		fmt.Println("\nAll migrations are up to date!")
	}
}

func handleUp(runner *migration.Runner) {
	fmt.Println("Applying all pending migrations...")

	results, err := runner.RunUp()
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("No pending migrations to apply")
		return
	}

	successCount := 0
	for _, result := range results {
		status := "FAILED"
		if result.Success {
			status = "SUCCESS"
			successCount++
		}
		fmt.Printf("  %s | Version %d | %s | %v\n",
			status, result.Version, result.Name, result.ExecutionTime)
		if !result.Success {
			fmt.Printf("    Error: %s\n", result.Error)
			break
		}
	}

	fmt.Printf("\nSummary: %d/%d migrations applied successfully\n", successCount, len(results))
	if successCount != len(results) {
		os.Exit(1)
	}
}

func handleInit(runner *migration.Runner) {
	if err := runner.Initialize(); err != nil {
		fmt.Printf("Initialization failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration system initialized successfully!")
}
