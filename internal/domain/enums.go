package domain

// FileFormat identifies the structural format of an ingested statement.
type FileFormat string

const (
	FormatPDF  FileFormat = "pdf"
	FormatCSV  FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
	FormatText FileFormat = "text"
)

// SupportedMimeTypes maps MIME content types to their FileFormat.
// Any other text/* type is also accepted and treated as FormatText.
var SupportedMimeTypes = map[string]FileFormat{
	"application/pdf":          FormatPDF,
	"text/csv":                 FormatCSV,
	"application/vnd.ms-excel": FormatXLSX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

// Direction is the polarity of a transaction. Amounts are stored sign-free;
// the direction carries the sign.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// FileStatus represents an uploaded statement's processing lifecycle.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
)

// BatchStatus represents an upload batch's lifecycle.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
)

// EmploymentType classifies a taxpayer by dominant income source.
type EmploymentType string

const (
	EmploymentPAYE         EmploymentType = "paye"
	EmploymentSelfEmployed EmploymentType = "self-employed"
	EmploymentMixed        EmploymentType = "mixed"
)

// Transaction categories produced by the normalizer.
const (
	CategoryIncome        = "income"
	CategoryBankCharges   = "bank_charges"
	CategoryDeduction     = "deduction"
	CategoryExpense       = "expense"
	CategoryUncategorized = "uncategorized"
)
