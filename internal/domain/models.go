package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UploadBatch groups the statement files a user uploads for one tax year.
type UploadBatch struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	OwnerID   uuid.UUID   `db:"owner_id" json:"owner_id"`
	TaxYear   int         `db:"tax_year" json:"tax_year"`
	Label     string      `db:"label" json:"label"`
	Status    BatchStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata and processing state of an uploaded statement file.
// RawText is retained after parsing for downstream text consumers.
type FileMeta struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OwnerID       uuid.UUID  `db:"owner_id" json:"owner_id"`
	BatchID       *uuid.UUID `db:"batch_id" json:"batch_id"`
	TaxYear       int        `db:"tax_year" json:"tax_year"`
	OriginalName  string     `db:"original_name" json:"original_name"`
	ContentType   string     `db:"content_type" json:"content_type"`
	FileSize      int64      `db:"file_size" json:"file_size"`
	BankName      string     `db:"bank_name" json:"bank_name"`
	S3Bucket      string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key         string     `db:"s3_key" json:"s3_key"`
	Status        FileStatus `db:"status" json:"status"`
	ParseError    string     `db:"parse_error" json:"parse_error"`
	RawText       string     `db:"raw_text" json:"-"`
	ParseAttempts int        `db:"parse_attempts" json:"parse_attempts"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizedTransaction is the pipeline-boundary form of a transaction:
// parsed date, sign-free amount, explicit direction, category assignment.
type NormalizedTransaction struct {
	Date           time.Time
	Description    string
	RawDescription string
	Amount         decimal.Decimal // always non-negative
	Direction      Direction
	Category       string
	SubCategory    string
	Currency       string
	BankName       string
}

// Transaction is the persisted, append-only form of a NormalizedTransaction.
// DeduplicationHash fingerprints the underlying financial event so the same
// event appearing in two uploads collapses to one row.
type Transaction struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	OwnerID           uuid.UUID       `db:"owner_id" json:"owner_id"`
	SourceFileID      uuid.UUID       `db:"source_file_id" json:"source_file_id"`
	BatchID           *uuid.UUID      `db:"batch_id" json:"batch_id"`
	TaxYear           int             `db:"tax_year" json:"tax_year"`
	Date              time.Time       `db:"date" json:"date"`
	Description       string          `db:"description" json:"description"`
	RawDescription    string          `db:"raw_description" json:"raw_description"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Direction         Direction       `db:"direction" json:"direction"`
	Category          string          `db:"category" json:"category"`
	SubCategory       string          `db:"sub_category" json:"sub_category"`
	Currency          string          `db:"currency" json:"currency"`
	BankName          string          `db:"bank_name" json:"bank_name"`
	DeduplicationHash string          `db:"deduplication_hash" json:"deduplication_hash"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// TaxAggregate is a versioned snapshot of a user's computed tax-relevant
// totals for one tax year. At most one non-invalidated row exists per
// (owner, tax year); recomputation invalidates the prior version and inserts
// the next, keeping an append-only history.
type TaxAggregate struct {
	ID                       uuid.UUID       `db:"id" json:"id"`
	OwnerID                  uuid.UUID       `db:"owner_id" json:"owner_id"`
	TaxYear                  int             `db:"tax_year" json:"tax_year"`
	Version                  int             `db:"version" json:"version"`
	TotalIncome              float64         `db:"total_income" json:"total_income"`
	TotalExpenses            float64         `db:"total_expenses" json:"total_expenses"`
	TotalBankCharges         float64         `db:"total_bank_charges" json:"total_bank_charges"`
	TaxableIncome            float64         `db:"taxable_income" json:"taxable_income"`
	IncomeCategories         json.RawMessage `db:"income_categories" json:"income_categories"`
	MonthlyBreakdown         json.RawMessage `db:"monthly_breakdown" json:"monthly_breakdown"`
	Deductions               json.RawMessage `db:"deductions" json:"deductions"`
	TaxLiability             json.RawMessage `db:"tax_liability" json:"tax_liability"`
	EmploymentClassification EmploymentType  `db:"employment_classification" json:"employment_classification"`
	Flags                    json.RawMessage `db:"flags" json:"flags"`
	TransactionCount         int             `db:"transaction_count" json:"transaction_count"`
	InvalidatedAt            *time.Time      `db:"invalidated_at" json:"invalidated_at"`
	CreatedAt                time.Time       `db:"created_at" json:"created_at"`
}

// IncomeSource is one entry of CompactTaxContext.IncomeSources.
type IncomeSource struct {
	Type  string  `json:"type"`
	Total float64 `json:"total"`
}

// CompactTaxContext is a small projection of the latest valid TaxAggregate,
// sized for inclusion in a downstream prompt. It is derived, never
// authoritative, and always re-derivable from the aggregate.
type CompactTaxContext struct {
	TaxYear        int            `json:"taxYear"`
	IncomeSources  []IncomeSource `json:"incomeSources"`
	TotalIncome    float64        `json:"totalIncome"`
	TaxableIncome  float64        `json:"taxableIncome"`
	EstimatedTax   float64        `json:"estimatedTax"`
	EffectiveRate  string         `json:"effectiveRate"`
	EmploymentType EmploymentType `json:"employmentType"`
	BankCharges    float64        `json:"bankCharges"`
	Flags          []string       `json:"flags"`
	UploadStatus   string         `json:"uploadStatus"`
	DataMonths     string         `json:"dataMonths"`
}

// TaxContextRecord is the persisted wrapper around a CompactTaxContext.
type TaxContextRecord struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	OwnerID       uuid.UUID       `db:"owner_id" json:"owner_id"`
	TaxYear       int             `db:"tax_year" json:"tax_year"`
	Version       int             `db:"version" json:"version"`
	ContextJSON   json.RawMessage `db:"context_json" json:"context_json"`
	TokenEstimate int             `db:"token_estimate" json:"token_estimate"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
