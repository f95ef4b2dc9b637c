package migrate

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"mpcereform/internal/agents"
	"mpcereform/internal/parser"
	"mpcereform/internal/propagate"
	"mpcereform/internal/sources"
	"mpcereform/internal/store"
)

// Tables filled from the confiscation register's multi-person cells.
const (
	tableAddressee     = "consignment_addressee"
	tableSignatory     = "consignment_signatory"
	tableHandlingAgent = "consignment_handling_agent"
)

// importEvents copies the event tables with their legacy client codes. The
// codes are rewritten later by propagation.
func (m *migration) importEvents(ctx context.Context) error {
	steps := []struct {
		table string
		run   func(context.Context) (int, error)
	}{
		{"consignment", m.importConsignments},
		{"stamping", m.importStampings},
		{"parisian_stock_auction", m.importAuctions},
		{"parisian_stock_sale", m.importSales},
		{"permission_simple_grant", m.importLicences},
	}
	for _, step := range steps {
		n, err := step.run(ctx)
		if err != nil {
			return errors.Wrapf(err, "importing %s", step.table)
		}
		m.result.Events[step.table] = n
		m.log.Infow("events imported", "table", step.table, "rows", n)
	}
	return nil
}

func (m *migration) importConsignments(ctx context.Context) (int, error) {
	register, err := m.books.Confiscations()
	if err != nil {
		return 0, err
	}
	rows, err := consignmentRows(register)
	if err != nil {
		return 0, err
	}
	if err := m.db.InsertConsignments(ctx, rows); err != nil {
		return 0, err
	}

	roles := []struct {
		table string
		cells func(sources.Confiscation) sources.AgentCells
	}{
		{tableAddressee, func(c sources.Confiscation) sources.AgentCells { return c.Addressees }},
		{tableSignatory, func(c sources.Confiscation) sources.AgentCells { return c.Signatories }},
		{tableHandlingAgent, func(c sources.Confiscation) sources.AgentCells { return c.HandlingAgents }},
	}
	for _, role := range roles {
		agentRows := consignmentAgentRows(register, role.cells)
		if err := m.db.InsertConsignmentAgents(ctx, role.table, agentRows); err != nil {
			return 0, err
		}
		m.log.Debugw("consignment agents imported", "table", role.table, "rows", len(agentRows))
	}

	m.fanIns = []propagate.FanIn{
		{
			Column:    propagate.AllCollectors,
			Namespace: agents.NamespaceClient,
			Entries:   fanInEntries(register, func(c sources.Confiscation) sources.AgentCells { return c.Collectors }),
		},
		{
			Column:    propagate.AllCensors,
			Namespace: agents.NamespaceClient,
			Entries:   fanInEntries(register, func(c sources.Confiscation) sources.AgentCells { return c.Censors }),
		},
	}
	return len(rows), nil
}

func consignmentRows(register []sources.Confiscation) ([]store.ConsignmentRow, error) {
	rows := make([]store.ConsignmentRow, len(register))
	for i, c := range register {
		id, err := uuid.NewUUID()
		if err != nil {
			return nil, errors.Wrap(err, "generating consignment uuid")
		}
		rows[i] = store.ConsignmentRow{
			ID:                     c.ID,
			UUID:                   id.String(),
			ConfiscationRegisterMS: store.NullString(c.ConfiscationRegisterMS),
			ConfiscationFolio:      store.NullString(c.ConfiscationFolio),
			CustomsRegisterMS:      store.NullString(c.CustomsRegisterMS),
			CustomsFolio:           store.NullString(c.CustomsFolio),
			MS21935Folio:           store.NullString(c.MS21935Folio),
			MS21935Entry:           store.NullString(c.MS21935Entry),
			ShippingNumber:         store.NullString(c.ShippingNumber),
			Marque:                 store.NullString(c.Marque),
			InspectionDate:         store.NullString(c.Date),
			OriginText:             store.NullString(c.OriginText),
			OriginCode:             store.NullString(c.OriginCode),
			OtherStakeholder:       store.NullString(c.OtherStakeholder),
			AcquitACaution:         store.NullString(c.AcquitACaution),
			ReturnedToName:         store.NullString(c.ReturnedToName),
			ReturnedToAgent:        store.NullString(c.ReturnedToAgent),
			ReturnedToTown:         store.NullString(c.ReturnedToTown),
			ReturnedToPlace:        store.NullString(c.ReturnedToPlace),
			Notes:                  store.NullString(c.Notes),
		}
	}
	return rows, nil
}

// consignmentAgentRows splits one role's cells into a row per person. Ids
// follow register order.
func consignmentAgentRows(register []sources.Confiscation, cells func(sources.Confiscation) sources.AgentCells) []store.ConsignmentAgentRow {
	var rows []store.ConsignmentAgentRow
	for _, c := range register {
		cell := cells(c)
		for _, pair := range parser.SplitPairs(cell.Names, cell.Codes) {
			rows = append(rows, store.ConsignmentAgentRow{
				ID:          int64(len(rows) + 1),
				Consignment: c.ID,
				AgentCode:   store.NullString(pair.Code),
				Text:        store.NullString(pair.Text),
			})
		}
	}
	return rows
}

func fanInEntries(register []sources.Confiscation, cells func(sources.Confiscation) sources.AgentCells) []propagate.Entry {
	var entries []propagate.Entry
	for _, c := range register {
		cell := cells(c)
		for _, pair := range parser.SplitPairs(cell.Names, cell.Codes) {
			entries = append(entries, propagate.Entry{ParentID: c.ID, Text: pair.Text, Key: pair.Code})
		}
	}
	return entries
}

func (m *migration) importStampings(ctx context.Context) (int, error) {
	stampings, err := m.db.Stampings(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := stampingRows(stampings)
	if err != nil {
		return 0, err
	}
	return len(rows), m.db.InsertStampings(ctx, rows)
}

func stampingRows(stampings []sources.Stamping) ([]store.StampingRow, error) {
	rows := make([]store.StampingRow, len(stampings))
	for i, s := range stampings {
		copies, err := optionalInt(s.Copies)
		if err != nil {
			return nil, errors.Wrapf(err, "stamping %d copies", s.ID)
		}
		volumes, err := optionalInt(s.Volumes)
		if err != nil {
			return nil, errors.Wrapf(err, "stamping %d volumes", s.ID)
		}
		rows[i] = store.StampingRow{
			ID:                 s.ID,
			StampedEdition:     store.NullString(s.Edition),
			PermittedDealer:    store.NullString(s.Dealer),
			AttendingInspector: store.NullString(s.Inspector),
			AttendingAdjoint:   store.NullString(s.Adjoint),
			StampedAtPlace:     store.NullString(s.Place),
			CopiesStamped:      copies,
			VolumesStamped:     volumes,
			Date:               store.NullString(s.Date),
			EventNotes:         store.NullString(s.Notes),
		}
	}
	return rows, nil
}

func (m *migration) importAuctions(ctx context.Context) (int, error) {
	auctions, err := m.db.Auctions(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([]store.StockAuctionRow, len(auctions))
	for i, a := range auctions {
		rows[i] = store.StockAuctionRow{
			ID:            int64(i + 1),
			AuctionID:     a.SalesNumber,
			MSNumber:      store.NullString(a.MSNumber),
			PreviousOwner: store.NullString(a.ClientCode),
			AuctionReason: store.NullString(a.Reason),
			Place:         store.NullString(a.PlaceCode),
		}
	}
	if err := m.db.InsertStockAuctions(ctx, rows); err != nil {
		return 0, err
	}

	admins := m.administratorRows(auctions)
	if err := m.db.InsertAuctionAdministrators(ctx, admins); err != nil {
		return 0, err
	}
	m.log.Debugw("auction administrators imported", "rows", len(admins))
	return len(rows), nil
}

// administratorRows splits the comma separated administrator annotations of
// each auction. An entry without a role annotation keeps its text and gets
// no role; an unknown role keyword is logged and left empty.
func (m *migration) administratorRows(auctions []sources.Auction) []store.AuctionAdministratorRow {
	var rows []store.AuctionAdministratorRow
	for _, a := range auctions {
		if strings.TrimSpace(a.Administrators) == "" {
			continue
		}
		for _, entry := range strings.Split(a.Administrators, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			row := store.AuctionAdministratorRow{
				ID:              int64(len(rows) + 1),
				AuctionID:       a.SalesNumber,
				AdministratorID: store.NullString(entry),
			}
			if ann, err := parser.ParseRoleAnnotation(entry); err == nil {
				row.AdministratorID = store.NullString(ann.Code)
				if id, ok := lookupID(auctionRoles, ann.Role); ok {
					row.Role = &id
				} else {
					m.log.Warnw("unknown auction role", "auction", a.SalesNumber, "administrator", ann.Code, "role", ann.Role)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (m *migration) importSales(ctx context.Context) (int, error) {
	sales, err := m.db.Sales(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([]store.StockSaleRow, len(sales))
	for i, s := range sales {
		rows[i] = store.StockSaleRow{
			ID:               s.ID,
			AuctionID:        store.NullString(s.AuctionID),
			Purchaser:        store.NullString(s.Dealer),
			PurchasedEdition: store.NullString(s.Edition),
			SaleType:         store.NullString(s.EventType),
			UnitsSold:        store.NullString(s.Copies),
			Units:            unitsOf(s.CopiesType),
			VolumesTraded:    store.NullString(s.Volumes),
			LotPrice:         store.NullString(s.LotPrice),
			Date:             store.NullString(s.Date),
			SaleNotes:        store.NullString(s.Notes),
		}
	}
	return len(rows), m.db.InsertStockSales(ctx, rows)
}

func (m *migration) importLicences(ctx context.Context) (int, error) {
	licences, err := m.books.Licences()
	if err != nil {
		return 0, err
	}
	rows := make([]store.PermissionGrantRow, len(licences))
	for i, l := range licences {
		rows[i] = store.PermissionGrantRow{
			ID:                    int64(i + 1),
			DawsonWork:            store.NullString(l.DawsonWork),
			DawsonEdition:         store.NullString(l.DawsonEdition),
			DateGranted:           parser.ParseDate(l.Date),
			EditionCode:           store.NullString(l.EditionCode),
			Licensee:              store.NullString(l.Licensee),
			LicensedCopies:        l.LicensedCopies,
			PrintedCopiesEstimate: l.PrintedCopiesEstimate,
			WorkConfirmed:         store.NullString(l.WorkConfirmed),
			EditionConfirmed:      store.NullString(l.EditionConfirmed),
		}
	}
	return len(rows), m.db.InsertPermissionGrants(ctx, rows)
}

// optionalInt reads a legacy numeric text column: blank is NULL, anything
// else must be an integer.
func optionalInt(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "malformed number %q", value), sources.ErrSourceIO)
	}
	return &n, nil
}
