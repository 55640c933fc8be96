package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/nirmantrack/sitebooks_backend/workflow"
)

// Rebuilds material stock aggregates from transaction history. With no
// material id it sweeps every material of the project.
func main() {
	projectID := flag.String("project-id", "", "Required: project id")
	materialID := flag.Int("material-id", 0, "Optional: material id (0 = all materials)")
	flag.Parse()

	if strings.TrimSpace(*projectID) == "" {
		fmt.Fprintln(os.Stderr, "--project-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	ctx := utils.SetProjectIdInContext(context.Background(), strings.TrimSpace(*projectID))

	if *materialID > 0 {
		material, err := workflow.RecomputeMaterial(ctx, *materialID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "recompute failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("material %d: stock=%s avg_cost=%s\n", material.ID, material.CurrentStock, material.AvgUnitCost)
		return
	}

	materials, err := workflow.RecomputeAllMaterials(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recompute failed: %v\n", err)
		os.Exit(1)
	}
	for _, material := range materials {
		fmt.Printf("material %d: stock=%s avg_cost=%s\n", material.ID, material.CurrentStock, material.AvgUnitCost)
	}
	fmt.Printf("recomputed %d materials\n", len(materials))
}
