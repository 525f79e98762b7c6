package report

// Record is one row of an exported phishing-simulation report.
// Fields hold raw, trimmed values from the source file; only derived
// fields outlive the import.
type Record struct {
	ID           string
	Status       string
	IP           string
	Latitude     string
	Longitude    string
	SendDate     string
	Reported     string
	ModifiedDate string
	Email        string
	FirstName    string
	LastName     string
	Position     string
}

// fixed positional columns of the export format
const (
	colID = iota
	colStatus
	colIP
	colLatitude
	colLongitude
	colSendDate
	colReported
	colModifiedDate
	colEmail
	colFirstName
	colLastName
	colPosition
)
