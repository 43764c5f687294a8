package patient

import (
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-table/internal/model"
	apperrors "github.com/jwalitptl/patient-table/pkg/errors"
	"github.com/jwalitptl/patient-table/pkg/logger"
	"github.com/jwalitptl/patient-table/pkg/metrics"
)

// Operation names reported to the Recorder.
const (
	OpInitialize       = "initialize"
	OpBeginCreate      = "begin_create"
	OpUpdateDraftField = "update_draft_field"
	OpCommitDraft      = "commit_draft"
	OpCancelCreate     = "cancel_create"
	OpUpdateField      = "update_field"
	OpRemove           = "remove"
	OpSortBy           = "sort_by"
	OpSetSearchTerm    = "set_search_term"
)

// IDGenerator returns a fresh opaque identifier.
type IDGenerator func() string

// Recorder receives one observation per store operation.
type Recorder interface {
	ObserveOperation(operation, outcome string)
	SetRecordCount(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) SetRecordCount(int)              {}

// Store owns the committed patient records and the single in-progress draft.
//
// A Store is not safe for concurrent use; every operation is expected to run
// to completion before the next one starts.
type Store struct {
	records    []model.Patient
	draft      *model.Patient
	adding     bool
	sortKey    model.Field
	searchTerm string

	newID    IDGenerator
	sorter   Sorter
	policy   CommitPolicy
	log      *logger.Logger
	recorder Recorder

	title cases.Caser
	fold  cases.Caser
}

type Option func(*Store)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithSorter(sorter Sorter) Option {
	return func(s *Store) { s.sorter = sorter }
}

func WithCommitPolicy(policy CommitPolicy) Option {
	return func(s *Store) { s.policy = policy }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		newID:    uuid.NewString,
		sorter:   StableSort,
		policy:   Permissive{},
		log:      logger.Nop(),
		recorder: nopRecorder{},
		title:    cases.Title(language.Und, cases.NoLower),
		fold:     cases.Fold(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces all state with seed. Records sharing an id with an
// earlier record are dropped.
func (s *Store) Initialize(seed []model.Patient) {
	records := make([]model.Patient, 0, len(seed))
	seen := make(map[string]struct{}, len(seed))
	for _, p := range seed {
		if _, dup := seen[p.ID]; dup {
			s.log.Warn(apperrors.NewBadRequest("duplicate patient id", nil), "dropping seed record", "id", p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		records = append(records, p)
	}

	s.records = records
	s.draft = nil
	s.adding = false
	s.sortKey = ""
	s.searchTerm = ""

	s.observe(OpInitialize, metrics.OutcomeOK)
}

// BeginCreate toggles adding mode. The first activation allocates a draft;
// toggling off keeps the draft values for the next activation.
func (s *Store) BeginCreate() {
	s.toggleAdding()
	s.observe(OpBeginCreate, metrics.OutcomeOK)
}

// CancelCreate hides the draft row without discarding its values.
func (s *Store) CancelCreate() {
	if !s.adding {
		s.observe(OpCancelCreate, metrics.OutcomeNoop)
		return
	}
	s.toggleAdding()
	s.observe(OpCancelCreate, metrics.OutcomeOK)
}

// UpdateDraftField sets one draft column. Names are capitalized; other
// columns keep the raw value.
func (s *Store) UpdateDraftField(key model.Field, rawValue string) {
	if !key.Valid() {
		s.rejectField(OpUpdateDraftField, key)
		return
	}
	if s.draft == nil {
		s.log.Warn(apperrors.NewNotFound("draft", nil), "draft update ignored", "field", string(key))
		s.observe(OpUpdateDraftField, metrics.OutcomeNoop)
		return
	}

	value := rawValue
	if key.IsText() {
		value = s.capitalize(rawValue)
	}
	next := s.draft.With(key, value)
	s.draft = &next
	s.observe(OpUpdateDraftField, metrics.OutcomeOK)
}

// CommitDraft appends the draft as is, leaves adding mode and prepares an
// empty draft with a fresh id. The appended record is not re-sorted.
func (s *Store) CommitDraft() error {
	if !s.adding || s.draft == nil {
		s.log.Warn(apperrors.NewNotFound("draft", nil), "commit ignored outside adding mode")
		s.observe(OpCommitDraft, metrics.OutcomeNoop)
		return nil
	}
	if err := s.policy.Check(*s.draft); err != nil {
		s.log.Warn(err, "draft rejected by commit policy", "id", s.draft.ID)
		s.observe(OpCommitDraft, metrics.OutcomeRejected)
		return err
	}

	s.records = append(s.records, *s.draft)
	s.adding = false
	s.draft = &model.Patient{ID: s.newID()}
	s.observe(OpCommitDraft, metrics.OutcomeOK)
	return nil
}

// UpdateField replaces the record with the given id, in place, by a copy
// holding rawValue under key. No normalization is applied.
func (s *Store) UpdateField(id string, key model.Field, rawValue string) {
	if !key.Valid() {
		s.rejectField(OpUpdateField, key)
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		s.log.Warn(apperrors.NewNotFound("patient", nil), "update ignored", "id", id, "field", string(key))
		s.observe(OpUpdateField, metrics.OutcomeNoop)
		return
	}
	s.records[i] = s.records[i].With(key, rawValue)
	s.observe(OpUpdateField, metrics.OutcomeOK)
}

// Remove deletes the record with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	kept := s.records[:0]
	for _, p := range s.records {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(s.records)
	clear(s.records[len(kept):])
	s.records = kept

	if !removed {
		s.log.Debug("remove ignored, no such patient", "id", id)
		s.observe(OpRemove, metrics.OutcomeNoop)
		return
	}
	s.observe(OpRemove, metrics.OutcomeOK)
}

// SortBy remembers key and reorders the records ascending by it.
func (s *Store) SortBy(key model.Field) {
	if !key.Valid() {
		s.rejectField(OpSortBy, key)
		return
	}
	s.sortKey = key
	s.sorter(s.records, key)
	s.observe(OpSortBy, metrics.OutcomeOK)
}

// SetSearchTerm stores term verbatim.
func (s *Store) SetSearchTerm(term string) {
	s.searchTerm = term
	s.observe(OpSetSearchTerm, metrics.OutcomeOK)
}

// VisibleRecords returns the records whose first name starts with the
// search term, ignoring case. It is recomputed on every call.
func (s *Store) VisibleRecords() []model.Patient {
	out := make([]model.Patient, 0, len(s.records))
	if s.searchTerm == "" {
		return append(out, s.records...)
	}
	for _, p := range s.records {
		if hasFoldedPrefix(s.fold, p.FirstName, s.searchTerm) {
			out = append(out, p)
		}
	}
	return out
}

// Records returns a copy of every committed record in display order.
func (s *Store) Records() []model.Patient {
	return append([]model.Patient(nil), s.records...)
}

// Draft returns the pending draft, if one has been allocated.
func (s *Store) Draft() (model.Patient, bool) {
	if s.draft == nil {
		return model.Patient{}, false
	}
	return *s.draft, true
}

func (s *Store) Adding() bool { return s.adding }

func (s *Store) SortKey() (model.Field, bool) { return s.sortKey, s.sortKey != "" }

func (s *Store) SearchTerm() string { return s.searchTerm }

// View snapshots everything needed to redraw the table. The draft is only
// included while adding mode is active.
func (s *Store) View() model.View {
	v := model.View{
		Records:    s.VisibleRecords(),
		Adding:     s.adding,
		SortKey:    s.sortKey,
		SearchTerm: s.searchTerm,
	}
	if d, ok := s.Draft(); ok && s.adding {
		v.Draft = &d
	}
	return v
}

func (s *Store) toggleAdding() {
	s.adding = !s.adding
	if s.adding && s.draft == nil {
		s.draft = &model.Patient{ID: s.newID(), Sex: model.SexMale}
	}
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.records {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) rejectField(op string, key model.Field) {
	s.log.Warn(apperrors.NewUnknownField(string(key)), "operation ignored", "operation", op)
	s.observe(op, metrics.OutcomeNoop)
}

func (s *Store) observe(op, outcome string) {
	s.recorder.ObserveOperation(op, outcome)
	s.recorder.SetRecordCount(len(s.records))
}
