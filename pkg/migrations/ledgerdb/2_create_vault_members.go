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
		log.Println("creating vault_members table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.VaultMemberDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.VaultMemberDao{}, "vault_id", "wallet_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping vault_members table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.VaultMemberDao{})
	})
}
