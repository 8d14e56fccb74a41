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
		log.Println("creating vaults table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.VaultDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.VaultDao{}, "creator_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping vaults table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.VaultDao{})
	})
}
