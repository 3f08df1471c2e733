// seed-commission-settings writes the seven commission percentages used by the report calculations.
// Only flags that are passed are written; existing rows keep their value otherwise.
//
// Usage (from backend directory):
//
//	DB_DRIVER=mysql DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-commission-settings --agent 2 --administration 4 --operations-manager-share-of-admin 50
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/estate_backend/commission"
	"github.com/mmdatafocus/estate_backend/config"
	"github.com/mmdatafocus/estate_backend/models"
	"github.com/mmdatafocus/estate_backend/utils"
)

func main() {
	values := map[string]*string{}
	for _, key := range commission.SettingKeys {
		flagName := strings.ReplaceAll(key, "_", "-")
		values[key] = flag.String(flagName, "", fmt.Sprintf("Percentage for %s (0-100)", key))
	}
	flag.Parse()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "SeedCommissionSettings")

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	written := 0
	for _, key := range commission.SettingKeys {
		raw := strings.TrimSpace(*values[key])
		if raw == "" {
			continue
		}
		value, err := commission.ParseAmount(key, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		setting, err := models.SetCommissionSetting(ctx, key, value, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", key, err)
			os.Exit(1)
		}
		fmt.Printf("%s = %s\n", setting.Name, setting.Value.String())
		written++
	}

	stored, err := models.ListCommissionSettings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list settings: %v\n", err)
		os.Exit(1)
	}
	present := make(map[string]bool, len(stored))
	for _, s := range stored {
		present[s.Name] = true
	}
	for _, key := range commission.SettingKeys {
		if !present[key] {
			fmt.Fprintf(os.Stderr, "warning: %s is still missing; commission reports will fail until it is set\n", key)
		}
	}
	fmt.Printf("Done. written=%d\n", written)
}
