package sources

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// ErrSourceIO marks failures to read a source collection. They end the run.
var ErrSourceIO = errors.New("source unavailable")

const (
	SheetAuthorPerson       = "author_person"
	SheetNewProfessions     = "New Professions"
	SheetPermissionClients  = "Clients"
	SheetLicences           = "Licences"
	SheetPeopleFinal        = "People final"
	SheetConfiscations      = "Confiscations master"
	SheetClientsWithoutCode = "clients_without_person_codes"
)

// lastPermissionClientRow is the last sheet row of the reviewed client list
// in the Clients sheet. Rows below it are working notes.
const lastPermissionClientRow = 249

// Files names the workbooks inside the spreadsheets directory.
type Files struct {
	AuthorPerson              string `yaml:"author_person"`
	PermissionSimple          string `yaml:"permission_simple"`
	Consignments              string `yaml:"consignments"`
	ClientsWithoutPersonCodes string `yaml:"clients_without_person_codes"`
}

func DefaultFiles() Files {
	return Files{
		AuthorPerson:              "author_person.xlsx",
		PermissionSimple:          "permission_simple.xlsx",
		Consignments:              "consignments.xlsx",
		ClientsWithoutPersonCodes: "clients_without_person_codes.xlsx",
	}
}

// Workbooks reads the project spreadsheets. Every read opens the workbook,
// skips the header row and closes it again.
type Workbooks struct {
	Dir   string
	Files Files
}

// AuthorLink is a row of the author/person review sheet.
type AuthorLink struct {
	AgentCode  string
	AuthorCode string
	Reviewed   bool
}

// PermissionClient is a row of the permission simple "Clients" sheet.
type PermissionClient struct {
	Code            string
	Name            string
	AltName         string
	Gender          string
	ProfessionCodes string
	PlaceCodes      string
	Notes           string
}

type Licence struct {
	DawsonWork            string
	DawsonEdition         string
	Date                  string
	EditionCode           string
	Licensee              string
	LicensedCopies        *int64
	PrintedCopiesEstimate *int64
	WorkConfirmed         string
	EditionConfirmed      string
}

// ConfiscationPerson is a row of the consignments "People final" sheet.
// Names and Codes are parallel semicolon lists.
type ConfiscationPerson struct {
	Names string
	Codes string
	Notes string
	Title string
	Place string
}

// AgentCells holds one names cell and one codes cell of the confiscation
// register.
type AgentCells struct {
	Names string
	Codes string
}

type Confiscation struct {
	ID                     int64
	ConfiscationRegisterMS string
	ConfiscationFolio      string
	CustomsRegisterMS      string
	CustomsFolio           string
	MS21935Folio           string
	Date                   string
	ShippingNumber         string
	Marque                 string
	AcquitACaution         string
	Addressees             AgentCells
	HandlingAgents         AgentCells
	Censors                AgentCells
	Collectors             AgentCells
	Signatories            AgentCells
	OtherStakeholder       string
	OriginText             string
	OriginCode             string
	ReturnedToName         string
	ReturnedToAgent        string
	ReturnedToTown         string
	ReturnedToPlace        string
	Notes                  string
	MS21935Entry           string
}

// ReviewedClient is a row of the sheet of STN clients that had no person
// code. Rows marked neither person nor corporate are unresolved reviews.
type ReviewedClient struct {
	Code      string
	Name      string
	Person    bool
	Corporate bool
	Notes     string
}

func (w *Workbooks) AuthorLinks() ([]AuthorLink, error) {
	rows, err := w.read(w.Files.AuthorPerson, SheetAuthorPerson)
	if err != nil {
		return nil, err
	}
	var links []AuthorLink
	for _, row := range rows {
		if cell(row, 0) == "" && cell(row, 3) == "" {
			continue
		}
		links = append(links, AuthorLink{
			AgentCode:  cell(row, 0),
			AuthorCode: cell(row, 3),
			Reviewed:   cell(row, 7) == "Y",
		})
	}
	return links, nil
}

func (w *Workbooks) NewProfessions() ([]Profession, error) {
	rows, err := w.read(w.Files.PermissionSimple, SheetNewProfessions)
	if err != nil {
		return nil, err
	}
	var professions []Profession
	for _, row := range rows {
		if cell(row, 0) == "" || cell(row, 1) == "" {
			continue
		}
		professions = append(professions, Profession{
			Type:   cell(row, 0),
			Code:   cell(row, 1),
			Group:  cell(row, 2),
			Sector: cell(row, 3),
		})
	}
	return professions, nil
}

func (w *Workbooks) PermissionClients() ([]PermissionClient, error) {
	rows, err := w.read(w.Files.PermissionSimple, SheetPermissionClients)
	if err != nil {
		return nil, err
	}
	rows = upToRow(rows, lastPermissionClientRow)
	var clients []PermissionClient
	for _, row := range rows {
		if cell(row, 0) == "" {
			continue
		}
		clients = append(clients, PermissionClient{
			Code:            cell(row, 0),
			Name:            cell(row, 1),
			AltName:         cell(row, 2),
			Gender:          cell(row, 3),
			ProfessionCodes: cell(row, 5),
			PlaceCodes:      cell(row, 7),
			Notes:           cell(row, 8),
		})
	}
	return clients, nil
}

func (w *Workbooks) Licences() ([]Licence, error) {
	path := w.path(w.Files.PermissionSimple)
	rows, err := w.read(w.Files.PermissionSimple, SheetLicences)
	if err != nil {
		return nil, err
	}
	var licences []Licence
	for i, row := range rows {
		if blank(row) {
			continue
		}
		licensed, err := intCell(row, 10)
		if err != nil {
			return nil, cellError(err, path, SheetLicences, i, 10)
		}
		printed, err := intCell(row, 11)
		if err != nil {
			return nil, cellError(err, path, SheetLicences, i, 11)
		}
		licences = append(licences, Licence{
			DawsonWork:            cell(row, 0),
			DawsonEdition:         cell(row, 1),
			Date:                  cell(row, 2),
			EditionCode:           cell(row, 3),
			Licensee:              cell(row, 6),
			LicensedCopies:        licensed,
			PrintedCopiesEstimate: printed,
			WorkConfirmed:         cell(row, 12),
			EditionConfirmed:      cell(row, 13),
		})
	}
	return licences, nil
}

func (w *Workbooks) ConfiscationPeople() ([]ConfiscationPerson, error) {
	rows, err := w.read(w.Files.Consignments, SheetPeopleFinal)
	if err != nil {
		return nil, err
	}
	var people []ConfiscationPerson
	for _, row := range rows {
		if cell(row, 2) == "" || cell(row, 3) == "" {
			continue
		}
		people = append(people, ConfiscationPerson{
			Names: cell(row, 2),
			Codes: cell(row, 3),
			Notes: cell(row, 4),
			Title: cell(row, 5),
			Place: cell(row, 7),
		})
	}
	return people, nil
}

func (w *Workbooks) Confiscations() ([]Confiscation, error) {
	path := w.path(w.Files.Consignments)
	rows, err := w.read(w.Files.Consignments, SheetConfiscations)
	if err != nil {
		return nil, err
	}
	var out []Confiscation
	for i, row := range rows {
		if cell(row, 0) == "" {
			continue
		}
		id, err := strconv.ParseInt(cell(row, 0), 10, 64)
		if err != nil {
			return nil, cellError(err, path, SheetConfiscations, i, 0)
		}
		out = append(out, Confiscation{
			ID:                     id,
			ConfiscationRegisterMS: cell(row, 1),
			ConfiscationFolio:      cell(row, 2),
			CustomsRegisterMS:      cell(row, 3),
			CustomsFolio:           cell(row, 4),
			MS21935Folio:           cell(row, 5),
			Date:                   cell(row, 6),
			ShippingNumber:         cell(row, 7),
			Marque:                 cell(row, 8),
			AcquitACaution:         cell(row, 9),
			Addressees:             AgentCells{Names: cell(row, 10), Codes: cell(row, 12)},
			HandlingAgents:         AgentCells{Names: cell(row, 17), Codes: cell(row, 18)},
			Censors:                AgentCells{Names: cell(row, 20), Codes: cell(row, 21)},
			Collectors:             AgentCells{Names: cell(row, 24), Codes: cell(row, 25)},
			Signatories:            AgentCells{Names: cell(row, 27), Codes: cell(row, 29)},
			OtherStakeholder:       cell(row, 32),
			OriginText:             cell(row, 33),
			OriginCode:             cell(row, 34),
			ReturnedToName:         cell(row, 36),
			ReturnedToAgent:        cell(row, 38),
			ReturnedToTown:         cell(row, 40),
			ReturnedToPlace:        cell(row, 41),
			Notes:                  cell(row, 42),
			MS21935Entry:           cell(row, 44),
		})
	}
	return out, nil
}

func (w *Workbooks) ReviewedClients() ([]ReviewedClient, error) {
	rows, err := w.read(w.Files.ClientsWithoutPersonCodes, SheetClientsWithoutCode)
	if err != nil {
		return nil, err
	}
	var clients []ReviewedClient
	for _, row := range rows {
		if cell(row, 0) == "" {
			continue
		}
		clients = append(clients, ReviewedClient{
			Code:      cell(row, 0),
			Name:      cell(row, 1),
			Person:    cell(row, 2) == "Y",
			Corporate: cell(row, 3) == "Y",
			Notes:     cell(row, 4),
		})
	}
	return clients, nil
}

func (w *Workbooks) path(file string) string {
	return filepath.Join(w.Dir, file)
}

func (w *Workbooks) read(file, sheet string) ([][]string, error) {
	path := w.path(file)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "opening workbook %s", path), ErrSourceIO)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading sheet %q of %s", sheet, path), ErrSourceIO)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// upToRow keeps the data rows that sit at or above the given 1-based sheet
// row. read drops the header, so data row i is sheet row i+2.
func upToRow(rows [][]string, last int) [][]string {
	if n := last - 1; n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// cell returns the trimmed value at index i. Rows come back without their
// trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func intCell(row []string, i int) (*int64, error) {
	v := cell(row, i)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err == nil {
		return &n, nil
	}
	f, ferr := strconv.ParseFloat(v, 64)
	if ferr != nil || f != float64(int64(f)) {
		return nil, err
	}
	n = int64(f)
	return &n, nil
}

// cellError reports a malformed cell with its spreadsheet coordinates. dataRow
// counts from the first row after the header.
func cellError(err error, path, sheet string, dataRow, col int) error {
	ref, cerr := excelize.CoordinatesToCellName(col+1, dataRow+2)
	if cerr != nil {
		ref = "?"
	}
	return errors.Mark(errors.Wrapf(err, "malformed cell %s!%s in %s", sheet, ref, path), ErrSourceIO)
}
