package muleguard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var bucketInvestigationCases = []byte("investigation_cases")

// CaseDisposition is the closing status of a Case, modeled on the lineage
// project's AMLDisposition types in aml.go.
type CaseDisposition string

const (
	DispositionNone      CaseDisposition = "NO_ACTION"
	DispositionEscalated CaseDisposition = "ESCALATED"
	DispositionReported  CaseDisposition = "REPORTED"
)

// CaseNote is an investigator-authored note attached to a Case, modeled on
// aml.go's InvestigationNote.
type CaseNote struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Case tracks human investigator workflow state against one ring produced
// by one AnalysisResult run (SPEC_FULL §3, §4.10). It is never reconstructed
// from or cached as an AnalysisResult itself; it holds only the ring ID,
// the member account IDs already present in that result, and
// investigator-authored text.
type Case struct {
	ID             string          `json:"id"`
	RingID         string          `json:"ring_id"`
	MemberAccounts []string        `json:"member_accounts"`
	Investigator   string          `json:"investigator"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
	Disposition    CaseDisposition `json:"disposition,omitempty"`
	Rationale      string          `json:"rationale,omitempty"`
	Notes          []CaseNote      `json:"notes"`
}

// CaseStore persists Case records in a bbolt bucket, keyed by case ID, the
// same bucket-per-entity pattern the lineage project's Storage uses for
// BucketAMLAlerts (storage.go).
type CaseStore struct {
	db *bbolt.DB
}

// OpenCaseStore opens (creating if absent) a bbolt-backed case store file.
func OpenCaseStore(path string) (*CaseStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open case store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketInvestigationCases)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create case bucket: %w", err)
	}
	return &CaseStore{db: db}, nil
}

func (cs *CaseStore) Close() error {
	return cs.db.Close()
}

func (cs *CaseStore) put(c *Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal case: %w", err)
	}
	return cs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketInvestigationCases).Put([]byte(c.ID), data)
	})
}

// OpenCase starts a new investigation case for ring against a given ring
// found in result, assigned to investigatorID.
func OpenCase(cs *CaseStore, result *AnalysisResult, ringID, investigatorID string) (*Case, error) {
	var members []string
	for _, r := range result.FraudRings {
		if r.RingID == ringID {
			members = r.MemberAccounts
			break
		}
	}
	if members == nil {
		return nil, fmt.Errorf("open case: ring %s not found in result", ringID)
	}

	c := &Case{
		ID:             uuid.New().String(),
		RingID:         ringID,
		MemberAccounts: append([]string(nil), members...),
		Investigator:   investigatorID,
		OpenedAt:       time.Now(),
	}
	if err := cs.put(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves a case by ID.
func (cs *CaseStore) Get(caseID string) (*Case, error) {
	var c Case
	err := cs.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketInvestigationCases).Get([]byte(caseID))
		if data == nil {
			return fmt.Errorf("case %s not found", caseID)
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddNote appends a note to the case and persists it.
func (cs *CaseStore) AddNote(caseID, content, createdBy string) error {
	c, err := cs.Get(caseID)
	if err != nil {
		return err
	}
	c.Notes = append(c.Notes, CaseNote{
		ID:        uuid.New().String(),
		Content:   content,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	})
	return cs.put(c)
}

// Close records a case's final disposition and rationale.
func (cs *CaseStore) Close(caseID string, disposition CaseDisposition, rationale string) error {
	c, err := cs.Get(caseID)
	if err != nil {
		return err
	}
	now := time.Now()
	c.ClosedAt = &now
	c.Disposition = disposition
	c.Rationale = rationale
	return cs.put(c)
}

// EnrichedReport pairs an AnalysisResult with watchlist sanctions matches
// observed during filtering. It is a distinct wrapper type, never a field
// on AnalysisResult itself (SPEC_FULL §9).
type EnrichedReport struct {
	*AnalysisResult
	SanctionsMatches []string `json:"sanctions_matches"`
}

// Investigate runs the detection pipeline against wl and wraps the result
// with any sanctions hits observed along the way.
func Investigate(transactions []Transaction, wl *Watchlist) (*EnrichedReport, error) {
	result, legit, err := analyzeFull(transactions, wl)
	if err != nil {
		return nil, err
	}
	return &EnrichedReport{
		AnalysisResult:   result,
		SanctionsMatches: legit.SanctionsMatches,
	}, nil
}
