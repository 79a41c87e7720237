package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/statsheet/internal/utils"
)

// ManifestFileName is the manifest's name inside the output directory.
const ManifestFileName = "manifest.json"

// Stage names a pipeline step that records its artifacts in the manifest.
type Stage string

const (
	StageSummarize  Stage = "summarize"
	StageHistograms Stage = "histograms"
	StageAssemble   Stage = "assemble"
	StageExport     Stage = "export"
)

// StageRecord describes the most recent completed run of one stage.
type StageRecord struct {
	RunID       string    `json:"run_id"`
	Stage       Stage     `json:"stage"`
	Input       string    `json:"input,omitempty"`
	InputSHA256 string    `json:"input_sha256,omitempty"`
	Outputs     []string  `json:"outputs"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Manifest ties each stage's outputs to the input they were computed from, so
// later stages can tell when artifacts come from different datasets.
type Manifest struct {
	Stages    map[Stage]*StageRecord `json:"stages"`
	UpdatedAt time.Time              `json:"updated_at"`

	// Not serialized: directory holding manifest.json.
	dir string
}

// LoadManifest reads the manifest in dir. An absent manifest yields an empty one.
func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{Stages: make(map[Stage]*StageRecord), dir: dir}
	b, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Stages == nil {
		m.Stages = make(map[Stage]*StageRecord)
	}
	return m, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string { return filepath.Join(m.dir, ManifestFileName) }

// Record stores a completed run of stage. When input is set its SHA-256 is
// taken as the run's fingerprint.
func (m *Manifest) Record(stage Stage, input string, outputs []string) (*StageRecord, error) {
	rec := &StageRecord{
		RunID:      uuid.NewString(),
		Stage:      stage,
		Input:      input,
		Outputs:    append([]string{}, outputs...),
		FinishedAt: time.Now().UTC(),
	}
	if input != "" {
		sum, err := utils.FileSHA256(input)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", input, err)
		}
		rec.InputSHA256 = sum
	}
	if m.Stages == nil {
		m.Stages = make(map[Stage]*StageRecord)
	}
	m.Stages[stage] = rec
	return rec, nil
}

// Stage returns the record for s.
func (m *Manifest) Stage(s Stage) (*StageRecord, bool) {
	rec, ok := m.Stages[s]
	return rec, ok
}

// InputsMatch reports whether stages a and b were computed from the same input
// bytes. A stage without a record or fingerprint counts as matching.
func (m *Manifest) InputsMatch(a, b Stage) bool {
	ra, ok := m.Stages[a]
	if !ok || ra.InputSHA256 == "" {
		return true
	}
	rb, ok := m.Stages[b]
	if !ok || rb.InputSHA256 == "" {
		return true
	}
	return ra.InputSHA256 == rb.InputSHA256
}

// Save writes manifest.json atomically.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now().UTC()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}
