package model

// ReportKind distinguishes the two artifact variants.
type ReportKind string

const (
	// KindContract is a single-contract report.
	KindContract ReportKind = "contract"
	// KindSummary is the cross-contract aggregate for one run.
	KindSummary ReportKind = "summary"
)

// Report is the tagged union of the two artifact variants. Consumers
// type-switch on the concrete type rather than branching on a flag.
type Report interface {
	Kind() ReportKind
	ArtifactFilename() string
}

// ContractCategoryEntry is one category line of a contract report. The
// field names mirror the historical artifact format and must not change.
type ContractCategoryEntry struct {
	Calls           int64   `json:"numero_chiamate"`
	DurationSeconds int64   `json:"durata_totale_secondi"`
	Cost            float64 `json:"costo_totale_euro"`
	CostPerMinute   float64 `json:"costo_al_minuto"`
}

// DailyEntry is one calendar day of a contract report.
type DailyEntry struct {
	Calls           int64   `json:"chiamate"`
	DurationMinutes float64 `json:"durata_minuti"`
	Cost            float64 `json:"costo_euro"`
}

// ContractReport is the per-contract artifact for one pipeline run.
type ContractReport struct {
	Filename             string                           `json:"filename"`
	ContractCode         string                           `json:"contract_code"`
	ClientCity           string                           `json:"client_city"`
	GenerationDate       string                           `json:"generation_date"`
	TotalCalls           int64                            `json:"total_calls"`
	TotalDurationMinutes float64                          `json:"total_duration_minutes"`
	TotalCost            float64                          `json:"total_cost"`
	CallTypesBreakdown   map[string]ContractCategoryEntry `json:"call_types_breakdown"`
	DailyBreakdown       map[string]DailyEntry            `json:"daily_breakdown"`
	IsSummary            bool                             `json:"is_summary"`
}

// Kind implements Report.
func (r *ContractReport) Kind() ReportKind { return KindContract }

// ArtifactFilename implements Report.
func (r *ContractReport) ArtifactFilename() string { return r.Filename }

// SummaryCategoryEntry is one category line of a summary report.
type SummaryCategoryEntry struct {
	Calls           int64   `json:"calls"`
	DurationMinutes float64 `json:"duration_minutes"`
	Cost            float64 `json:"cost_euro"`
}

// TopContract is one entry of a summary ranking.
type TopContract struct {
	ContractCode string  `json:"codice_contratto"`
	ClientCity   string  `json:"cliente_finale_comune"`
	TotalCalls   int64   `json:"totale_chiamate"`
	TotalCost    float64 `json:"costo_totale_euro"`
}

// TopContracts holds the summary rankings, each truncated to TopContractsLimit.
type TopContracts struct {
	TopByCost  []TopContract `json:"top_by_cost"`
	TopByCalls []TopContract `json:"top_by_calls"`
}

// TopContractsLimit caps both summary rankings.
const TopContractsLimit = 5

// SummaryReport aggregates all contracts processed in one run. The
// contracts_processed count occupies the client_city slot the contract
// variant uses, preserving the shared top-level shape of the artifact.
type SummaryReport struct {
	Filename             string                          `json:"filename"`
	ContractCode         string                          `json:"contract_code"`
	ContractsProcessed   int                             `json:"client_city"`
	GenerationDate       string                          `json:"generation_date"`
	TotalCalls           int64                           `json:"total_calls"`
	TotalDurationMinutes float64                         `json:"total_duration_minutes"`
	TotalCost            float64                         `json:"total_cost"`
	CallTypesBreakdown   map[string]SummaryCategoryEntry `json:"call_types_breakdown"`
	TopContracts         TopContracts                    `json:"top_contracts"`
	IsSummary            bool                            `json:"is_summary"`
}

// Kind implements Report.
func (r *SummaryReport) Kind() ReportKind { return KindSummary }

// ArtifactFilename implements Report.
func (r *SummaryReport) ArtifactFilename() string { return r.Filename }
