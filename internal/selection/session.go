package selection

import (
	"variants-service/internal/models"
)

// ChangeFunc is invoked after every selection or catalog change with the
// resolved variant (nil when no full match exists) and the display strings
// for the host UI to update price, stock badge, and add-to-cart eligibility.
type ChangeFunc func(match *models.CatalogVariant, attributeNames, valueNames string)

// Session holds the selection state for one product's variant picker: the
// current catalog snapshot, the derived attribute index, and the user's
// in-progress selection.
//
// Sessions are single-writer by design: all mutation happens synchronously
// from one interaction handler, and the resolvers are pure reads of the
// current snapshot, so no locking is needed.
type Session struct {
	variants  []models.CatalogVariant
	index     []AttributeGroup
	selection Selection
	// touched tracks attributes the user explicitly picked or cleared;
	// auto-select never overrides them.
	touched  map[string]bool
	loadSeq  uint64
	loaded   bool
	onChange ChangeFunc
}

// NewSession creates an empty session. The callback may be nil.
func NewSession(onChange ChangeFunc) *Session {
	return &Session{
		selection: make(Selection),
		touched:   make(map[string]bool),
		onChange:  onChange,
	}
}

// StartLoad marks the beginning of a catalog fetch and returns its token.
// When the product changes while a fetch is in flight, the newer StartLoad
// supersedes the older one: only the completion carrying the latest token is
// applied (last-request-wins).
func (s *Session) StartLoad() uint64 {
	s.loadSeq++
	return s.loadSeq
}

// CompleteLoad installs a fetched catalog snapshot. Stale completions (token
// older than the latest StartLoad) are discarded and the method returns
// false. Installing a snapshot invalidates the previous selection entirely
// rather than merging it, then applies the auto-select rule and notifies.
func (s *Session) CompleteLoad(token uint64, variants []models.CatalogVariant) bool {
	if token != s.loadSeq {
		return false
	}
	s.variants = variants
	s.index = BuildIndex(variants)
	s.selection = make(Selection)
	s.touched = make(map[string]bool)
	s.loaded = true
	s.autoSelect()
	s.notify()
	return true
}

// FailLoad records a failed catalog fetch. The session falls back to the
// neutral "no variants" state; stale failures are ignored.
func (s *Session) FailLoad(token uint64) bool {
	if token != s.loadSeq {
		return false
	}
	s.variants = nil
	s.index = nil
	s.selection = make(Selection)
	s.touched = make(map[string]bool)
	s.loaded = true
	s.notify()
	return true
}

// Loaded reports whether a catalog load (successful or not) has completed.
// Until then the session renders a neutral state rather than false
// availability info.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Restore re-applies a previously valid selection, e.g. one echoed back by a
// stateless client. Entries referencing attributes or values no longer in
// the current index are silently dropped. Restored attributes count as
// user-chosen.
func (s *Session) Restore(sel map[string]string) {
	for attrID, valueID := range sel {
		group, ok := s.group(attrID)
		if !ok {
			continue
		}
		if _, ok := group.valueLabel(valueID); !ok {
			continue
		}
		s.selection[attrID] = valueID
		s.touched[attrID] = true
	}
	s.notify()
}

// Pick applies a user's (attribute, value) choice through the smart-switch
// resolver. Pairs not present in the current index are ignored.
func (s *Session) Pick(attributeID, valueID string) bool {
	group, ok := s.group(attributeID)
	if !ok {
		return false
	}
	if _, ok := group.valueLabel(valueID); !ok {
		return false
	}
	s.selection = ApplyPick(s.variants, s.selection, attributeID, valueID)
	s.touched[attributeID] = true
	s.notify()
	return true
}

// Clear removes the selection for an attribute. The attribute counts as
// user-touched so auto-select will not re-populate it.
func (s *Session) Clear(attributeID string) {
	delete(s.selection, attributeID)
	s.touched[attributeID] = true
	s.notify()
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	return s.selection.Clone()
}

// Index returns the derived attribute index.
func (s *Session) Index() []AttributeGroup {
	return s.index
}

// Resolve returns the variant matching the current selection, if any, with
// the display strings.
func (s *Session) Resolve() (*models.CatalogVariant, string, string) {
	return ResolveMatch(s.index, s.variants, s.selection)
}

// States derives the per-value render state for every attribute in the index.
func (s *Session) States() []models.AttributeState {
	states := make([]models.AttributeState, 0, len(s.index))
	for _, group := range s.index {
		attrState := models.AttributeState{
			AttributeID: group.Attribute.ID,
			Name:        group.Attribute.Name,
			IconURL:     group.Attribute.IconURL,
			Values:      make([]models.ValueState, 0, len(group.Values)),
		}
		for _, value := range group.Values {
			selectable := IsSelectable(s.variants, group.Attribute.ID, value.ID, s.selection)
			attrState.Values = append(attrState.Values, models.ValueState{
				ValueID:    value.ID,
				Label:      value.Label,
				Selected:   s.selection[group.Attribute.ID] == value.ID,
				Selectable: selectable,
				OutOfStock: selectable && IsOutOfStock(s.variants, group.Attribute.ID, value.ID, s.selection),
			})
		}
		states = append(states, attrState)
	}
	return states
}

// autoSelect populates sole-value attributes the user has not touched.
// It runs once per index change; a pointless single-option picker is skipped
// by pre-selecting its only value.
func (s *Session) autoSelect() {
	for _, group := range s.index {
		if len(group.Values) != 1 {
			continue
		}
		attrID := group.Attribute.ID
		if s.touched[attrID] {
			continue
		}
		if _, ok := s.selection[attrID]; ok {
			continue
		}
		s.selection[attrID] = group.Values[0].ID
	}
}

func (s *Session) group(attributeID string) (AttributeGroup, bool) {
	for _, g := range s.index {
		if g.Attribute.ID == attributeID {
			return g, true
		}
	}
	return AttributeGroup{}, false
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	match, attrNames, valueNames := s.Resolve()
	s.onChange(match, attrNames, valueNames)
}
