package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/models"
	"bitbucket.org/lanefocus/freight_backend/trackingsync"
	"bitbucket.org/lanefocus/freight_backend/utils"
)

// Ops tool to queue and drive a reconcile run from the command line,
// bypassing Pub/Sub. Useful when the push subscription is down or a run
// needs to be reprocessed by hand.
func main() {
	businessID := flag.String("business-id", "", "Required: business id (uuid)")
	runID := flag.Uint("run-id", 0, "Existing run id to process; 0 creates a new run")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, *businessID)
	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "System")

	id := *runID
	if id == 0 {
		run, err := models.CreateReconcileRun(ctx, *businessID, models.ReconcileTriggeredSystem, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create run: %v\n", err)
			os.Exit(1)
		}
		id = run.ID
		fmt.Printf("created run %d\n", id)
	}

	if err := trackingsync.ProcessRun(ctx, id, *businessID); err != nil {
		fmt.Fprintf(os.Stderr, "run %d failed: %v\n", id, err)
		os.Exit(1)
	}

	run, err := models.GetReconcileRun(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run %d finished but could not be reloaded: %v\n", id, err)
		os.Exit(1)
	}
	fmt.Printf("run %d finished: status=%s jobs=%d matched=%d discrepant=%d not_tracked=%d errors=%d\n",
		run.ID, run.Status, run.JobCount, run.Matched, run.Discrepant, run.NotTracked, run.ErrorCount)
}
