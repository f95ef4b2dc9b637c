package sqlstore

import (
	"context"

	"mpcereform/internal/store"
)

func (d *DB) InsertAgents(ctx context.Context, rows []store.AgentRow) error {
	_, err := insertRows(ctx, d, store.Target("agent"), rows, false)
	return err
}

func (d *DB) InsertKeyLinks(ctx context.Context, rows []store.KeyLinkRow) error {
	_, err := insertRows(ctx, d, store.Target("agent_key"), rows, false)
	return err
}

func (d *DB) InsertClientAgents(ctx context.Context, rows []store.ClientAgentRow) error {
	_, err := insertRows(ctx, d, store.Target("stn_client_agent"), rows, false)
	return err
}

func (d *DB) InsertMemberships(ctx context.Context, rows []store.MembershipRow) error {
	_, err := insertRows(ctx, d, store.Target("is_member_of"), rows, false)
	return err
}

func (d *DB) InsertAddresses(ctx context.Context, rows []store.AddressRow) error {
	_, err := insertRows(ctx, d, store.Target("agent_address"), rows, false)
	return err
}

func (d *DB) InsertAgentProfessions(ctx context.Context, rows []store.AgentProfessionRow) error {
	_, err := insertRows(ctx, d, store.Target("agent_profession"), rows, false)
	return err
}

func (d *DB) InsertProfessions(ctx context.Context, rows []store.ProfessionRow, ignoreDuplicates bool) (int64, error) {
	return insertRows(ctx, d, store.Target("profession"), rows, ignoreDuplicates)
}

func (d *DB) InsertPlaces(ctx context.Context, rows []store.PlaceRow) error {
	_, err := insertRows(ctx, d, store.Target("place"), rows, false)
	return err
}

func (d *DB) InsertStnClients(ctx context.Context, rows []store.StnClientRow) error {
	_, err := insertRows(ctx, d, store.Target("stn_client"), rows, false)
	return err
}

func (d *DB) InsertLookup(ctx context.Context, table string, rows []store.LookupRow) error {
	_, err := insertRows(ctx, d, store.Target(table), rows, false)
	return err
}

func (d *DB) InsertEditionAuthors(ctx context.Context, rows []store.EditionAuthorRow) error {
	_, err := insertRows(ctx, d, store.Target("edition_author"), rows, false)
	return err
}

func (d *DB) InsertConsignments(ctx context.Context, rows []store.ConsignmentRow) error {
	_, err := insertRows(ctx, d, store.Target("consignment"), rows, false)
	return err
}

func (d *DB) InsertConsignmentAgents(ctx context.Context, table string, rows []store.ConsignmentAgentRow) error {
	_, err := insertRows(ctx, d, store.Target(table), rows, false)
	return err
}

func (d *DB) InsertStampings(ctx context.Context, rows []store.StampingRow) error {
	_, err := insertRows(ctx, d, store.Target("stamping"), rows, false)
	return err
}

func (d *DB) InsertStockAuctions(ctx context.Context, rows []store.StockAuctionRow) error {
	_, err := insertRows(ctx, d, store.Target("parisian_stock_auction"), rows, false)
	return err
}

func (d *DB) InsertAuctionAdministrators(ctx context.Context, rows []store.AuctionAdministratorRow) error {
	_, err := insertRows(ctx, d, store.Target("auction_administrator"), rows, false)
	return err
}

func (d *DB) InsertStockSales(ctx context.Context, rows []store.StockSaleRow) error {
	_, err := insertRows(ctx, d, store.Target("parisian_stock_sale"), rows, false)
	return err
}

func (d *DB) InsertPermissionGrants(ctx context.Context, rows []store.PermissionGrantRow) error {
	_, err := insertRows(ctx, d, store.Target("permission_simple_grant"), rows, false)
	return err
}
