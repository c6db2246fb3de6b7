// Command rollback restores the live postal_codes table to a previously
// recorded data version from its snapshot, per spec.md's rollback contract.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ignite/postal-converter-ja/internal/audit"
	"github.com/ignite/postal-converter-ja/internal/config"
	"github.com/ignite/postal-converter-ja/internal/errs"
	"github.com/ignite/postal-converter-ja/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("rollback", flag.ContinueOnError)
	dataVersion := fs.String("data-version", "", "target data_version to restore from its snapshot")
	databaseType := fs.String("database-type", "", "override DATABASE_TYPE (postgres|mysql)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if *dataVersion == "" {
		fmt.Fprintln(os.Stderr, "rollback: --data-version is required")
		return 2
	}
	if *databaseType != "" && *databaseType != "postgres" && *databaseType != "mysql" {
		fmt.Fprintln(os.Stderr, "rollback: --database-type must be postgres or mysql")
		return 2
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rollback: failed to load configuration: %v\n", err)
		return 1
	}
	if *databaseType != "" {
		cfg.Store.Type = config.DatabaseType(*databaseType)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rollback: failed to open store: %v\n", err)
		return 1
	}
	defer st.Close()

	restored, err := audit.Rollback(ctx, st, *dataVersion, string(cfg.Store.Type), time.Now())
	if err != nil {
		if errors.Is(err, errs.ErrNoSnapshot) {
			fmt.Fprintf(os.Stderr, "rollback: no snapshot exists for data_version %q\n", *dataVersion)
		} else {
			fmt.Fprintf(os.Stderr, "rollback: %v\n", err)
		}
		return 1
	}

	fmt.Printf("restored_rows=%d\n", restored)
	return 0
}
