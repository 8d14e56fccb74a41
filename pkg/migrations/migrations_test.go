package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/shakti-network/shakti-ledger/pkg/migrations/ledgerdb"
	"github.com/shakti-network/shakti-ledger/pkg/pgutil"
)

func TestLedgerDBMigrations_Apply(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	expectedTables := []string{
		"vaults",
		"vault_members",
		"loan_proposals",
		"loan_votes",
		"loan_repayments",
		"bun_migrations",
	}
	for _, table := range expectedTables {
		pgutil.AssertTableExists(t, db, table)
	}

	pgutil.AssertIndexExists(t, db, "idx_vaults_creator_address")
	pgutil.AssertIndexExists(t, db, "idx_vault_members_vault_id")
	pgutil.AssertIndexExists(t, db, "idx_vault_members_wallet_address")
	pgutil.AssertIndexExists(t, db, "idx_loan_proposals_vault_id")
	pgutil.AssertIndexExists(t, db, "idx_loan_proposals_vault_id_loan_id")
	pgutil.AssertIndexExists(t, db, "idx_loan_votes_proposal_id")
	pgutil.AssertIndexExists(t, db, "idx_loan_votes_proposal_id_voter_address")
	pgutil.AssertIndexExists(t, db, "idx_loan_repayments_proposal_id")
}

func TestLedgerDBMigrations_Rollback(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected a migration group to roll back")
	}
}
