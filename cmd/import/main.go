package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"gym-cutoff/internal/config"
	environment "gym-cutoff/internal/env"
	"gym-cutoff/internal/infra/sqlite3"
	"gym-cutoff/internal/storage"
	"gym-cutoff/internal/stories/audit"
	"gym-cutoff/internal/stories/cutoffs"
)

func main() {
	dbPath := flag.String("db", "", "path to SQLite database (default DB_PATH)")
	csvPath := flag.String("csv", "./fee_cutoffs.csv", "path to CSV file with fee cut-offs")
	actorID := flag.Int64("actor", 0, "admin ID recorded in the audit log")
	dryRun := flag.Bool("dry-run", false, "validate rows without writing to DB")
	flag.Parse()

	if *actorID == 0 {
		log.Fatal("admin ID is required: -actor <admin_id>")
	}

	ctx := context.Background()

	cfg, err := environment.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	logger := environment.NewLogger(cfg)

	db, err := openDB(ctx, cfg.DB, logger, *dryRun)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("failed to open CSV: %v", err)
	}
	defer f.Close()

	rows, parseErrs := readRows(f)
	for _, e := range parseErrs {
		fmt.Printf("SKIP: %v\n", e)
	}

	var creator feeCreator
	if *dryRun {
		creator = newDryRun(storage.New(db.DB))
	} else {
		creator = environment.NewCutoffsService(db, logger)
	}

	actor := audit.Actor{ID: *actorID, Type: audit.ActorAdmin, UserAgent: "cmd/import"}
	imported, skipped := importRows(ctx, creator, actor, rows)

	fmt.Printf("\nDone. Imported: %d, skipped: %d, unparsable: %d\n", imported, skipped, len(parseErrs))
	if *dryRun {
		fmt.Println("(dry run, nothing was written)")
	}
}

var errNoSchema = errors.New("database has no cut-off schema, run the import once without -dry-run or start the bot")

// openDB migrates only when rows will be written. A dry run leaves the
// schema as is and requires it to exist.
func openDB(ctx context.Context, cfg config.SQLiteConfig, logger *slog.Logger, dryRun bool) (*sqlite3.DB, error) {
	if !dryRun {
		return environment.OpenDB(ctx, cfg, logger)
	}

	db, err := environment.OpenExistingDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ok, err := sqlite3.HasTable(ctx, db.DB, "fee_cutoffs")
	if err != nil {
		db.Close()
		return nil, err
	}
	if !ok {
		db.Close()
		return nil, errNoSchema
	}

	return db, nil
}

type feeCreator interface {
	CreateFeeRule(ctx context.Context, actor audit.Actor, edit cutoffs.FeeEdit) (*cutoffs.FeeRule, error)
}

func importRows(ctx context.Context, creator feeCreator, actor audit.Actor, rows []row) (imported, skipped int) {
	for _, r := range rows {
		rule, err := creator.CreateFeeRule(ctx, actor, r.edit)

		var auditErr *cutoffs.AuditError
		switch {
		case errors.As(err, &auditErr):
			fmt.Printf("WARN: line %d created as #%d but audit entry is missing: %v\n", r.line, rule.ID, auditErr)
			imported++
		case err != nil:
			fmt.Printf("SKIP: line %d: %v\n", r.line, err)
			skipped++
		default:
			fmt.Printf("OK: line %d -> fee rule #%d [%g, %g] admin %g%% gym %g%%\n",
				r.line, rule.ID, rule.PriceRangeStart, rule.PriceRangeEnd, rule.AdminCutPercent, rule.GymCutPercent)
			imported++
		}
	}
	return imported, skipped
}
