// Package report persists and reloads the pipeline's JSON artifacts.
// Artifacts are canonicalized (RFC 8785) before writing so two runs over
// identical inputs produce byte-identical files, and written atomically
// so readers never observe a truncated report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/kaptinlin/jsonschema"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
)

// Store reads and writes report artifacts under one directory.
type Store struct {
	contractSchema *jsonschema.Schema
	summarySchema  *jsonschema.Schema
	dir            string
}

// artifactName recognizes the storage naming convention:
// <CONTRACT>_<YYYY-MM>.json for contract reports and
// SUMMARY_<YYYY-MM>.json for run summaries.
var artifactName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9.-]*)_(\d{4}-\d{2})\.json$`)

// summaryMarker is the contract-code slot value naming summary artifacts.
const summaryMarker = "SUMMARY"

// NewStore opens (creating if needed) an artifact directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	cs, err := compiler.Compile([]byte(contractSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile contract report schema: %w", err)
	}
	ss, err := compiler.Compile([]byte(summarySchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary report schema: %w", err)
	}

	return &Store{dir: dir, contractSchema: cs, summarySchema: ss}, nil
}

// ContractFilename derives the artifact name for a contract and period.
func ContractFilename(contractCode, period string) string {
	return fmt.Sprintf("%s_%s.json", contractCode, period)
}

// SummaryFilename derives the artifact name for a run summary.
func SummaryFilename(period string) string {
	return fmt.Sprintf("%s_%s.json", summaryMarker, period)
}

// Write persists a report atomically and returns its filename. A report
// for the same contract and period supersedes the previous artifact.
func (s *Store) Write(r model.Report) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize report: %w", err)
	}

	filename := r.ArtifactFilename()
	if filename == "" {
		return "", fmt.Errorf("report has no filename")
	}

	tmp, err := os.CreateTemp(s.dir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(canonical); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, filename)); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to publish artifact: %w", err)
	}

	return filename, nil
}

// Read loads one artifact by filename, validating its shape before
// returning the typed variant.
func (s *Store) Read(filename string) (model.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(filename)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", filename, err)
	}

	var probe struct {
		IsSummary bool `json:"is_summary"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, filename, err)
	}

	if probe.IsSummary {
		if err := s.validate(s.summarySchema, data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, filename, err)
		}
		var r model.SummaryReport
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, filename, err)
		}
		return &r, nil
	}

	if err := s.validate(s.contractSchema, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, filename, err)
	}
	var r model.ContractReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptArtifact, filename, err)
	}
	return &r, nil
}

func (s *Store) validate(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}

// Metadata describes one stored artifact without loading its body.
type Metadata struct {
	ModTime      time.Time
	Filename     string
	ContractCode string
	Period       string
	Kind         model.ReportKind
	Size         int64
}

// ListFilter narrows a listing; zero values match everything.
type ListFilter struct {
	Kind         model.ReportKind
	ContractCode string
	Period       string
}

// List scans the artifact directory for files matching the naming
// convention, without reading their bodies.
func (s *Store) List(filter ListFilter) ([]Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan reports directory: %w", err)
	}

	var out []Metadata
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := artifactName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}

		md := Metadata{
			Filename:     e.Name(),
			ContractCode: m[1],
			Period:       m[2],
			Kind:         model.KindContract,
		}
		if m[1] == summaryMarker {
			md.Kind = model.KindSummary
			md.ContractCode = ""
		}

		if filter.Kind != "" && md.Kind != filter.Kind {
			continue
		}
		if filter.ContractCode != "" && md.ContractCode != filter.ContractCode {
			continue
		}
		if filter.Period != "" && md.Period != filter.Period {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		md.Size = info.Size()
		md.ModTime = info.ModTime()

		out = append(out, md)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}
