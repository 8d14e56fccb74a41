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
		log.Println("creating loan_repayments table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.LoanRepaymentDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.LoanRepaymentDao{}, "proposal_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping loan_repayments table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.LoanRepaymentDao{})
	})
}
