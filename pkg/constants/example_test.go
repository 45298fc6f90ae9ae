package constants_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/releasemap/pkg/constants"
)

// Example demonstrates using constants for common file operations
func Example() {
	dir, err := os.MkdirTemp("", "releasemap-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	publish := filepath.Join(dir, constants.DefaultPublishDir)
	if err := os.MkdirAll(publish, constants.DirPermissions); err != nil {
		panic(err)
	}

	file := filepath.Join(publish, constants.DefaultLedgerPath)
	if err := os.WriteFile(file, []byte(`{"versions":[]}`), constants.FilePermissions); err != nil {
		panic(err)
	}

	fmt.Printf("Created dir with %o permissions\n", constants.DirPermissions)
	fmt.Printf("Created file with %o permissions\n", constants.FilePermissions)
	fmt.Println(filepath.Base(file))
	// Output:
	// Created dir with 755 permissions
	// Created file with 644 permissions
	// version-history.json
}

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}
	fmt.Printf("HTTP timeout: %v\n", client.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), constants.CommandTimeout)
	defer cancel()

	select {
	case <-time.After(10 * time.Millisecond):
		fmt.Println("Operation completed")
	case <-ctx.Done():
		fmt.Println("Operation timed out")
	}

	// Output:
	// HTTP timeout: 10s
	// Operation completed
}

// Example_backfillPacing shows the backfill pacing constants
func Example_backfillPacing() {
	versions := 25
	checkpoints := versions / constants.CheckpointEvery
	minimum := time.Duration(versions) * constants.BackfillDelay

	fmt.Printf("Checkpoints: %d\n", checkpoints)
	fmt.Printf("Minimum lookup time: %v\n", minimum)
	// Output:
	// Checkpoints: 2
	// Minimum lookup time: 12.5s
}

// Example_dates shows formatting a release date
func Example_dates() {
	released := time.Date(2025, 2, 20, 17, 30, 0, 0, time.UTC)
	fmt.Println(released.Format(constants.DateLayout))
	fmt.Println(constants.DefaultLedgerPath + constants.BackupSuffix)
	// Output:
	// 2025-02-20
	// version-history.json.backup
}
