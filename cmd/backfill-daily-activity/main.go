package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/models"
	"github.com/mmdatafocus/estate_backend/utils"
	"github.com/mmdatafocus/estate_backend/workflow"
)

func main() {
	from := flag.String("from", "", "Required: start date (YYYY-MM-DD)")
	to := flag.String("to", "", "Optional: end date (YYYY-MM-DD). Defaults to today in the business timezone.")
	users := flag.String("user", "", "Optional: comma-separated user ids. If empty, backfills every operations user.")
	flag.Parse()

	loc := config.BusinessTimezone()
	start, err := utils.ParseDate(strings.TrimSpace(*from), loc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "--from is required (YYYY-MM-DD)")
		os.Exit(2)
	}
	end := utils.ConvertToDate(time.Now(), loc)
	if strings.TrimSpace(*to) != "" {
		end, err = utils.ParseDate(strings.TrimSpace(*to), loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --to: %v\n", err)
			os.Exit(2)
		}
	}

	var userIds []int
	for _, part := range strings.Split(*users, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			fmt.Fprintf(os.Stderr, "invalid user id %q\n", part)
			os.Exit(2)
		}
		userIds = append(userIds, id)
	}

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "BackfillDailyActivity")

	// Explicit connect; config does not connect in init().
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	if config.ReportCacheEnabled() || config.ReportLockEnabled() {
		config.ConnectRedisWithRetry()
	}
	models.MigrateTable()

	result, err := workflow.NewReportWorkflow().RecalculateDailyActivityRange(ctx, userIds, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done. from=%s to=%s created=%d recalculated=%d failed=%d\n",
		start.Format(utils.DateLayout), end.Format(utils.DateLayout),
		result.Created, result.Recalculated, result.Failed)
	if result.Failed > 0 {
		os.Exit(3)
	}
}
