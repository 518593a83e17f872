package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/auditlens/internal/audit"
)

//go:embed fixture.cue
var fixtureSchema string

// ErrInvalidFixture is returned when a fixture fails schema validation or
// cannot be converted into audit records.
var ErrInvalidFixture = errors.New("invalid fixture")

// Fixture is a seed document: current-state entities, typed audit records
// in append order, and extra generic Audit_Log entries.
type Fixture struct {
	Users     []User         `yaml:"users"`
	Customers []Customer     `yaml:"customers"`
	Products  []Product      `yaml:"products"`
	Orders    []Order        `yaml:"orders"`
	Payments  []Payment      `yaml:"payments"`
	Audit     []FixtureAudit `yaml:"audit"`
	Log       []FixtureLog   `yaml:"log"`
}

// FixtureAudit describes one typed audit record.
type FixtureAudit struct {
	Kind      string    `yaml:"kind"`
	ID        int64     `yaml:"id"`
	Operation string    `yaml:"operation"`
	ChangedBy *int64    `yaml:"changed_by"`
	ChangedAt string    `yaml:"changed_at"`
	Reason    *string   `yaml:"reason"`
	Old       *Snapshot `yaml:"old"`
	New       *Snapshot `yaml:"new"`
}

// Snapshot is the union of every tracked field. The schema restricts which
// fields each kind may set; absent and null both mean SQL NULL.
type Snapshot struct {
	Name          *string      `yaml:"name"`
	Price         *audit.Money `yaml:"price"`
	StockQuantity *int64       `yaml:"stock_quantity"`
	Category      *string      `yaml:"category"`
	Status        *string      `yaml:"status"`
	TotalAmount   *audit.Money `yaml:"total_amount"`
	Email         *string      `yaml:"email"`
	Phone         *string      `yaml:"phone"`
	Amount        *audit.Money `yaml:"amount"`
	PaymentStatus *string      `yaml:"payment_status"`
}

// FixtureLog describes one raw Audit_Log entry.
type FixtureLog struct {
	TableName string  `yaml:"table_name"`
	RecordID  int64   `yaml:"record_id"`
	Operation string  `yaml:"operation"`
	FieldName *string `yaml:"field_name"`
	OldValue  *string `yaml:"old_value"`
	NewValue  *string `yaml:"new_value"`
	ChangedAt string  `yaml:"changed_at"`
	ChangedBy *int64  `yaml:"changed_by"`
}

// LoadFixtureFile reads and validates a YAML fixture from disk.
func LoadFixtureFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return LoadFixture(data)
}

// LoadFixture validates a YAML fixture against the embedded CUE schema and
// decodes it strictly (unknown fields are errors).
func LoadFixture(data []byte) (*Fixture, error) {
	if err := validateFixture(data); err != nil {
		return nil, err
	}

	var fx Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return &fx, nil
}

func validateFixture(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse yaml: %v", ErrInvalidFixture, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(fixtureSchema, cue.Filename("fixture.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile fixture schema: %w", err)
	}
	value := cctx.CompileBytes(asJSON, cue.Filename("fixture.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Fixture")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFixture, strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

// Record converts the fixture entry into a typed audit record.
func (f FixtureAudit) Record() (audit.Record, error) {
	kind, err := audit.ParseKind(f.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	op, err := audit.ParseOperation(f.Operation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	at, err := ParseTimestamp(f.ChangedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	header := audit.Header{Operation: op, ChangedAt: at}
	if f.ChangedBy != nil {
		header.ChangedBy = audit.Int64Of(*f.ChangedBy)
	}
	old, nw := f.Old, f.New
	if old == nil {
		old = &Snapshot{}
	}
	if nw == nil {
		nw = &Snapshot{}
	}

	switch kind {
	case audit.KindProduct:
		return audit.ProductAudit{
			Header:           header,
			ProductID:        f.ID,
			OldName:          nullString(old.Name),
			NewName:          nullString(nw.Name),
			OldPrice:         nullMoney(old.Price),
			NewPrice:         nullMoney(nw.Price),
			OldStockQuantity: nullInt(old.StockQuantity),
			NewStockQuantity: nullInt(nw.StockQuantity),
			OldCategory:      nullString(old.Category),
			NewCategory:      nullString(nw.Category),
			Reason:           nullString(f.Reason),
		}, nil
	case audit.KindOrder:
		return audit.OrderAudit{
			Header:         header,
			OrderID:        f.ID,
			OldStatus:      nullString(old.Status),
			NewStatus:      nullString(nw.Status),
			OldTotalAmount: nullMoney(old.TotalAmount),
			NewTotalAmount: nullMoney(nw.TotalAmount),
			Reason:         nullString(f.Reason),
		}, nil
	case audit.KindCustomer:
		return audit.CustomerAudit{
			Header:     header,
			CustomerID: f.ID,
			OldName:    nullString(old.Name),
			NewName:    nullString(nw.Name),
			OldEmail:   nullString(old.Email),
			NewEmail:   nullString(nw.Email),
			OldPhone:   nullString(old.Phone),
			NewPhone:   nullString(nw.Phone),
		}, nil
	default:
		return audit.PaymentAudit{
			Header:           header,
			PaymentID:        f.ID,
			OldAmount:        nullMoney(old.Amount),
			NewAmount:        nullMoney(nw.Amount),
			OldPaymentStatus: nullString(old.PaymentStatus),
			NewPaymentStatus: nullString(nw.PaymentStatus),
		}, nil
	}
}

// Entry converts the fixture entry into an Audit_Log entry.
func (f FixtureLog) Entry() (audit.LogEntry, error) {
	op, err := audit.ParseOperation(f.Operation)
	if err != nil {
		return audit.LogEntry{}, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	at, err := ParseTimestamp(f.ChangedAt)
	if err != nil {
		return audit.LogEntry{}, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return audit.LogEntry{
		TableName: f.TableName,
		RecordID:  f.RecordID,
		Operation: op,
		FieldName: nullString(f.FieldName),
		OldValue:  nullString(f.OldValue),
		NewValue:  nullString(f.NewValue),
		ChangedAt: at,
		ChangedBy: nullInt(f.ChangedBy),
	}, nil
}

// SeedResult counts the rows a Seed call wrote.
type SeedResult struct {
	Entities     int `json:"entities"`
	AuditRecords int `json:"audit_records"`
	LogEntries   int `json:"log_entries"`
}

// Seed writes a fixture: entities first (users, customers, products,
// orders, payments), then audit records in document order, then raw log
// entries. It stops at the first failure.
func (s *Store) Seed(ctx context.Context, fx *Fixture) (SeedResult, error) {
	var res SeedResult
	for _, u := range fx.Users {
		if err := s.PutUser(ctx, u); err != nil {
			return res, fmt.Errorf("seed user %d: %w", u.ID, err)
		}
		res.Entities++
	}
	for _, c := range fx.Customers {
		if err := s.PutCustomer(ctx, c); err != nil {
			return res, fmt.Errorf("seed customer %d: %w", c.ID, err)
		}
		res.Entities++
	}
	for _, p := range fx.Products {
		if err := s.PutProduct(ctx, p); err != nil {
			return res, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
		res.Entities++
	}
	for _, o := range fx.Orders {
		if err := s.PutOrder(ctx, o); err != nil {
			return res, fmt.Errorf("seed order %d: %w", o.ID, err)
		}
		res.Entities++
	}
	for _, p := range fx.Payments {
		if err := s.PutPayment(ctx, p); err != nil {
			return res, fmt.Errorf("seed payment %d: %w", p.ID, err)
		}
		res.Entities++
	}
	for i, a := range fx.Audit {
		rec, err := a.Record()
		if err != nil {
			return res, fmt.Errorf("seed audit[%d]: %w", i, err)
		}
		if _, err := s.AppendAudit(ctx, rec); err != nil {
			return res, fmt.Errorf("seed audit[%d]: %w", i, err)
		}
		res.AuditRecords++
	}
	for i, l := range fx.Log {
		entry, err := l.Entry()
		if err != nil {
			return res, fmt.Errorf("seed log[%d]: %w", i, err)
		}
		if _, err := s.AppendLogEntry(ctx, entry); err != nil {
			return res, fmt.Errorf("seed log[%d]: %w", i, err)
		}
		res.LogEntries++
	}
	return res, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses an RFC 3339 timestamp or a zone-less
// "YYYY-MM-DD HH:MM:SS" taken as UTC. The result is always UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func nullString(p *string) audit.NullString {
	if p == nil {
		return audit.NullString{}
	}
	return audit.StringOf(*p)
}

func nullInt(p *int64) audit.NullInt64 {
	if p == nil {
		return audit.NullInt64{}
	}
	return audit.Int64Of(*p)
}

func nullMoney(p *audit.Money) audit.NullMoney {
	if p == nil {
		return audit.NullMoney{}
	}
	return audit.MoneyOf(*p)
}
