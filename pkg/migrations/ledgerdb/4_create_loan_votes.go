package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	mghelper "github.com/shakti-network/shakti-ledger/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating loan_votes table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.LoanVoteDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &ledgerstore.LoanVoteDao{}, "proposal_id"); err != nil {
			return err
		}
		// One vote per (proposal, voter), enforced by the database so a
		// concurrent duplicate cannot slip past the application check.
		return mghelper.CreateModelCompositeUniqueIndex(ctx, db, &ledgerstore.LoanVoteDao{}, "proposal_id", "voter_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping loan_votes table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.LoanVoteDao{})
	})
}
