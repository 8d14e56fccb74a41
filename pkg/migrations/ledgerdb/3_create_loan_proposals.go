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
		log.Println("creating loan_proposals table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.LoanProposalDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &ledgerstore.LoanProposalDao{}, "vault_id", "borrower_address"); err != nil {
			return err
		}
		return mghelper.CreateModelCompositeUniqueIndex(ctx, db, &ledgerstore.LoanProposalDao{}, "vault_id", "loan_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping loan_proposals table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.LoanProposalDao{})
	})
}
