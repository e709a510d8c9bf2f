package dataexchangeapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/infrastructure/spreadsheet"
	"go.uber.org/zap"
)

// exportPageSize is the batch size used to walk a tenant's records
const exportPageSize = shared.MaxPageSize

// clientColumns maps the canonical import columns to the headers artisans
// commonly use. The export headers are part of the aliases so an exported
// file imports back unchanged.
var clientColumns = map[string][]string{
	"type":         {"type de client", "categorie"},
	"last_name":    {"nom", "nom de famille", "lastname", "surname", "name"},
	"first_name":   {"prénom", "firstname", "first name"},
	"company_name": {"société", "entreprise", "raison sociale", "company", "company name"},
	"email":        {"e-mail", "mail", "courriel", "adresse email", "adresse e-mail"},
	"phone":        {"téléphone", "tel", "tél", "portable", "mobile", "phone number"},
	"street":       {"adresse", "rue", "address"},
	"complement":   {"complément", "complément d'adresse", "address line 2"},
	"postal_code":  {"code postal", "cp", "zip", "zip code", "postcode"},
	"city":         {"ville", "commune", "town"},
	"country":      {"pays"},
	"notes":        {"note", "remarques", "commentaire", "commentaires"},
}

var clientTypeAliases = map[string]client.ClientType{
	"individual":    client.ClientTypeIndividual,
	"particulier":   client.ClientTypeIndividual,
	"company":       client.ClientTypeCompany,
	"entreprise":    client.ClientTypeCompany,
	"societe":       client.ClientTypeCompany,
	"professionnel": client.ClientTypeCompany,
	"pro":           client.ClientTypeCompany,
}

// Service imports clients from spreadsheets and exports clients and invoices
type Service struct {
	clientRepo  client.ClientRepository
	invoiceRepo invoice.InvoiceRepository
	runRepo     dataexchange.ImportRunRepository
	eventBus    shared.EventPublisher
	mapper      *spreadsheet.HeaderMapper
	maxRows     int
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new data exchange service
func NewService(
	clientRepo client.ClientRepository,
	invoiceRepo invoice.InvoiceRepository,
	runRepo dataexchange.ImportRunRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		runRepo:     runRepo,
		eventBus:    eventBus,
		mapper:      spreadsheet.NewHeaderMapper(clientColumns),
		maxRows:     spreadsheet.DefaultMaxRows,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMaxRows changes the row limit of imported files
func (s *Service) SetMaxRows(n int) {
	if n > 0 {
		s.maxRows = n
	}
}

// clientRules are the per-column checks. Name presence depends on the client
// type and is checked when the row is mapped.
func clientRules() []spreadsheet.FieldRule {
	types := make([]string, 0, len(clientTypeAliases)+1)
	for alias := range clientTypeAliases {
		types = append(types, alias)
	}
	types = append(types, "société")
	return []spreadsheet.FieldRule{
		spreadsheet.Field("type").OneOf(types...).Build(),
		spreadsheet.Field("last_name").MaxLength(100).Build(),
		spreadsheet.Field("first_name").MaxLength(100).Build(),
		spreadsheet.Field("company_name").MaxLength(200).Build(),
		spreadsheet.Field("email").Email().Unique().Build(),
		spreadsheet.Field("phone").Phone().Build(),
		spreadsheet.Field("notes").MaxLength(2000).Build(),
	}
}

// ImportClients reads a CSV or XLSX file and creates or updates clients,
// matching existing ones by email. In VALIDATE mode nothing is written but the
// import history. Invalid rows are skipped and reported.
func (s *Service) ImportClients(ctx context.Context, tenantID, userID uuid.UUID, req ImportRequest) (*ImportResponse, error) {
	formatHint := req.Format
	if formatHint == "" {
		formatHint = req.FileName
	}
	format, err := dataexchange.ParseFormat(formatHint)
	if err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = dataexchange.ModeValidate
	}

	run, err := dataexchange.NewImportRun(tenantID, req.FileName, format, mode)
	if err != nil {
		return nil, err
	}
	run.SetCreatedBy(userID)

	table, err := spreadsheet.Read(format, req.Data, spreadsheet.Options{Mapper: s.mapper, MaxRows: s.maxRows})
	if err != nil {
		return nil, s.failRun(ctx, run, fileError(err))
	}
	if !table.HasColumn("last_name") && !table.HasColumn("company_name") {
		return nil, s.failRun(ctx, run, shared.NewDomainError("MISSING_COLUMNS",
			"The file must contain a name column (Nom or Société)"))
	}

	result := dataexchange.Result{Total: len(table.Rows)}
	validator := spreadsheet.NewFieldValidator(clientRules())

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if errs := validator.ValidateRow(row); len(errs) > 0 {
			skipRow(&result, errs)
			continue
		}
		if err := s.importRow(ctx, tenantID, userID, mode, row, &result); err != nil {
			s.logger.Error("client import aborted",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("line", row.LineNumber),
				zap.Error(err))
			run.Fail(fmt.Sprintf("line %d: %v", row.LineNumber, err))
			if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
				s.logger.Error("failed to save import run", zap.Error(saveErr))
			}
			return nil, err
		}
	}

	if err := run.Complete(result); err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save import run: %w", err)
	}

	s.logger.Info("client import finished",
		zap.String("tenant_id", tenantID.String()),
		zap.String("run_id", run.ID.String()),
		zap.String("mode", string(mode)),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	if result.Errors == nil {
		result.Errors = dataexchange.RowErrors{}
	}
	return &ImportResponse{RunID: run.ID, Mode: mode, Status: run.Status, Result: result}, nil
}

// importRow upserts one valid row. Row-level problems are recorded in the
// result; only infrastructure failures are returned.
func (s *Service) importRow(ctx context.Context, tenantID, userID uuid.UUID, mode dataexchange.Mode, row *spreadsheet.Row, result *dataexchange.Result) error {
	details, field, err := rowToDetails(row)
	if err != nil {
		result.AddError(row.LineNumber, field, err.Error())
		return nil
	}

	var existing *client.Client
	if details.Email != "" {
		email, _ := valueobject.NormalizeEmail(details.Email)
		found, err := s.clientRepo.FindByEmailForTenant(ctx, tenantID, email)
		switch {
		case err == nil:
			existing = found
		case errors.Is(err, shared.ErrNotFound):
		default:
			return err
		}
	}

	var c *client.Client
	if existing != nil {
		if err := existing.Update(details); err != nil {
			result.AddError(row.LineNumber, fieldOf(err), err.Error())
			return nil
		}
		c = existing
	} else {
		created, err := client.NewClient(tenantID, details)
		if err != nil {
			result.AddError(row.LineNumber, fieldOf(err), err.Error())
			return nil
		}
		created.SetCreatedBy(userID)
		c = created
	}

	if mode == dataexchange.ModeCommit {
		if err := s.clientRepo.Save(ctx, c); err != nil {
			return err
		}
		if s.eventBus != nil {
			if err := s.eventBus.Publish(ctx, c.GetDomainEvents()...); err != nil {
				s.logger.Warn("failed to publish client events", zap.Error(err))
			}
		}
		c.ClearDomainEvents()
	}

	if existing != nil {
		result.Updated++
	} else {
		result.Imported++
	}
	return nil
}

// rowToDetails maps a row onto client details. It returns the faulty column
// alongside an error.
func rowToDetails(row *spreadsheet.Row) (client.Details, string, error) {
	d := client.Details{
		FirstName:   row.Get("first_name"),
		LastName:    row.Get("last_name"),
		CompanyName: row.Get("company_name"),
		Email:       row.Get("email"),
		Phone:       row.Get("phone"),
		Notes:       row.Get("notes"),
	}

	if raw := row.Get("type"); raw != "" {
		d.Type = clientTypeAliases[valueobject.SearchKey(raw)]
	} else if d.CompanyName != "" && d.LastName == "" {
		d.Type = client.ClientTypeCompany
	} else {
		d.Type = client.ClientTypeIndividual
	}

	if d.LastName == "" && d.CompanyName == "" {
		return d, "last_name", fmt.Errorf("name is required")
	}

	addr, err := valueobject.NewAddress(
		row.Get("street"),
		row.Get("complement"),
		row.Get("postal_code"),
		row.Get("city"),
		row.Get("country"),
	)
	if err != nil {
		return d, "address", err
	}
	d.Address = addr
	return d, "", nil
}

// fieldOf guesses the column a client validation error refers to
func fieldOf(err error) string {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return ""
	}
	switch domainErr.Code {
	case "INVALID_EMAIL":
		return "email"
	case "INVALID_PHONE":
		return "phone"
	case "INVALID_CLIENT_TYPE":
		return "type"
	case "INVALID_CLIENT":
		if strings.Contains(domainErr.Message, "Company") {
			return "company_name"
		}
		return "last_name"
	}
	return ""
}

// skipRow records the errors of one rejected row
func skipRow(result *dataexchange.Result, errs []spreadsheet.RowError) {
	first := errs[0]
	result.AddError(first.Row, first.Column, first.Message)
	for _, e := range errs[1:] {
		result.Errors = append(result.Errors, dataexchange.RowError{Line: e.Row, Field: e.Column, Message: e.Message})
	}
}

// fileError turns a reading failure into a user-facing domain error
func fileError(err error) error {
	switch {
	case errors.Is(err, spreadsheet.ErrEmptyFile), errors.Is(err, spreadsheet.ErrNoDataRows):
		return shared.NewDomainError("EMPTY_FILE", "The file contains no client")
	case errors.Is(err, spreadsheet.ErrTooManyRows):
		return shared.NewDomainError("FILE_TOO_LARGE", "The file contains too many rows")
	case errors.Is(err, spreadsheet.ErrInvalidEncoding):
		return shared.NewDomainError("INVALID_ENCODING", "The file encoding is not supported")
	}
	return shared.NewDomainError("INVALID_FILE", fmt.Sprintf("The file cannot be read: %v", err))
}

// failRun records an unreadable file in the history and returns its error
func (s *Service) failRun(ctx context.Context, run *dataexchange.ImportRun, cause error) error {
	run.Fail(cause.Error())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("failed to save import run", zap.Error(err))
	}
	return cause
}

// ListImportRuns returns the import history of a tenant
func (s *Service) ListImportRuns(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[ImportRunResponse], error) {
	filter = filter.Normalize()
	runs, total, err := s.runRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ImportRunResponse]{}, err
	}
	items := make([]ImportRunResponse, len(runs))
	for i := range runs {
		items[i] = ToImportRunResponse(&runs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ExportClients writes every client of a tenant to a spreadsheet
func (s *Service) ExportClients(ctx context.Context, tenantID uuid.UUID, formatName string) (*Export, error) {
	format, err := dataexchange.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	sheet := &spreadsheet.Sheet{
		Name: "Clients",
		Columns: []spreadsheet.Column{
			{Header: "Type", Width: 12},
			{Header: "Nom", Width: 20},
			{Header: "Prénom", Width: 18},
			{Header: "Société", Width: 26},
			{Header: "Email", Width: 28},
			{Header: "Téléphone", Width: 16},
			{Header: "Adresse", Width: 30},
			{Header: "Complément", Width: 20},
			{Header: "Code postal", Width: 12},
			{Header: "Ville", Width: 18},
			{Header: "Pays", Width: 8},
			{Header: "Notes", Width: 30},
			{Header: "Créé le", Kind: spreadsheet.KindDate, Width: 12},
		},
	}

	filter := shared.Filter{Page: 1, PageSize: exportPageSize, OrderBy: "created_at", OrderDir: "asc"}
	for {
		clients, total, err := s.clientRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for _, c := range clients {
			sheet.AddRow(
				string(c.Type),
				c.LastName,
				c.FirstName,
				c.CompanyName,
				c.Email,
				c.Phone,
				c.Address.Street,
				c.Address.Complement,
				c.Address.PostalCode,
				c.Address.City,
				c.Address.Country,
				c.Notes,
				c.CreatedAt,
			)
		}
		if len(clients) == 0 || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}

	name := fmt.Sprintf("clients-%s.%s", s.now().Format("20060102"), format.Extension())
	return s.encode(format, name, sheet)
}

// ExportInvoices writes the invoice ledger of a period. Drafts have no
// number and are left out.
func (s *Service) ExportInvoices(ctx context.Context, tenantID uuid.UUID, formatName string, from, to *time.Time) (*Export, error) {
	format, err := dataexchange.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "The end of the period must be after its start")
	}

	var invoices []invoice.Invoice
	filter := invoice.InvoiceFilter{
		Filter: shared.Filter{Page: 1, PageSize: exportPageSize, OrderBy: "issue_date", OrderDir: "asc"},
		From:   from,
		To:     to,
	}
	for {
		page, total, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for _, inv := range page {
			if inv.Status != invoice.InvoiceStatusDraft {
				invoices = append(invoices, inv)
			}
		}
		if len(page) == 0 || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}

	names, err := s.clientNames(ctx, tenantID, invoices)
	if err != nil {
		return nil, err
	}

	sheet := &spreadsheet.Sheet{
		Name: "Factures",
		Columns: []spreadsheet.Column{
			{Header: "Numéro", Width: 18},
			{Header: "Client", Width: 26},
			{Header: "Objet", Width: 30},
			{Header: "Statut", Width: 16},
			{Header: "Date", Kind: spreadsheet.KindDate, Width: 12},
			{Header: "Échéance", Kind: spreadsheet.KindDate, Width: 12},
			{Header: "Total HT", Kind: spreadsheet.KindMoney, Width: 14},
			{Header: "TVA", Kind: spreadsheet.KindMoney, Width: 12},
			{Header: "Total TTC", Kind: spreadsheet.KindMoney, Width: 14},
			{Header: "Payé", Kind: spreadsheet.KindMoney, Width: 14},
			{Header: "Reste dû", Kind: spreadsheet.KindMoney, Width: 14},
		},
	}
	for i := range invoices {
		inv := &invoices[i]
		sheet.AddRow(
			inv.Number,
			names[inv.ClientID],
			inv.Title,
			string(inv.Status),
			inv.IssueDate,
			inv.DueDate,
			inv.Totals.TotalHT,
			inv.Totals.TotalVAT,
			inv.Totals.TotalTTC,
			inv.PaidAmount,
			inv.Outstanding(),
		)
	}

	period := "tout"
	if from != nil || to != nil {
		period = periodLabel(from) + "_" + periodLabel(to)
	}
	name := fmt.Sprintf("factures-%s.%s", period, format.Extension())
	return s.encode(format, name, sheet)
}

func periodLabel(t *time.Time) string {
	if t == nil {
		return "x"
	}
	return t.Format("2006-01-02")
}

func (s *Service) clientNames(ctx context.Context, tenantID uuid.UUID, invoices []invoice.Invoice) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, inv := range invoices {
		if !seen[inv.ClientID] {
			seen[inv.ClientID] = true
			ids = append(ids, inv.ClientID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	clients, err := s.clientRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		names[clients[i].ID] = clients[i].DisplayName()
	}
	return names, nil
}

func (s *Service) encode(format dataexchange.Format, name string, sheet *spreadsheet.Sheet) (*Export, error) {
	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, format, sheet); err != nil {
		return nil, fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return &Export{
		FileName:    name,
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
		Rows:        len(sheet.Rows),
	}, nil
}
