package run

import (
	"frogwalk/domain/core"
)

// Manifest is the replay record of a batch: enough to rerun it and check the outcome
type Manifest struct {
	BatchID     core.BatchID   `json:"batch_id"`
	Config      Config         `json:"config"`
	FirstSeed   uint64         `json:"first_seed"`
	LastSeed    uint64         `json:"last_seed"`
	CodeVersion string         `json:"code_version"`
	Fingerprint RunFingerprint `json:"fingerprint"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewManifest builds the manifest of a finished batch
func NewManifest(batch *Batch, codeVersion string) *Manifest {
	cfg := batch.Config
	return &Manifest{
		BatchID:     batch.ID,
		Config:      cfg,
		FirstSeed:   cfg.SeedFor(0),
		LastSeed:    cfg.SeedFor(cfg.NumRuns - 1),
		CodeVersion: codeVersion,
		Fingerprint: NewRunFingerprint(cfg, codeVersion, batch.OutcomeHash()),
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.BatchID.IsEmpty() {
		return core.NewValidationError("batch_id", "cannot be empty")
	}
	if _, err := core.ParseBatchID(m.BatchID.String()); err != nil {
		return core.NewValidationError("batch_id", err.Error())
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("code_version", "cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("fingerprint", "cannot be empty")
	}
	return m.Config.Validate()
}

// Verify recomputes the fingerprint from a replayed batch and compares it
func (m *Manifest) Verify(replayed *Batch) error {
	actual := NewRunFingerprint(replayed.Config, m.CodeVersion, replayed.OutcomeHash())
	if !actual.Fingerprint.Equals(m.Fingerprint.Fingerprint) {
		return core.NewFingerprintMismatchError(m.Fingerprint.Fingerprint, actual.Fingerprint)
	}
	return nil
}
