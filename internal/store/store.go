// Package store owns the canonical layout document and all editor state
// around it: selection, clipboard, tool mode and viewport. Every mutation
// funnels through this API and re-validates the document before returning,
// so observers always see a consistent (document, validation) pair.
//
// No operation returns an error for user-facing invalid input; invalidity
// is always communicated through the cached ValidationResult so the editor
// stays usable mid-edit.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gauge-designer/backend/internal/catalog"
	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/validation"
)

// Tool is the active canvas tool: ToolSelect, or an element kind for
// click-to-place.
type Tool string

// ToolSelect is the default selection/manipulation tool.
const ToolSelect Tool = "select"

// PlacementTool returns the tool that places elements of the given kind.
func PlacementTool(kind models.ElementType) Tool {
	return Tool(kind)
}

// DuplicateOffset is the position delta applied to duplicated and pasted
// elements so they are visually distinguishable from their source.
const DuplicateOffset = 20.0

// Store is the single source of truth for one editor session. All writers
// go through its mutation API; a mutex substitutes for the single-threaded
// event loop of a UI host.
type Store struct {
	mu         sync.RWMutex
	doc        *models.LayoutDocument
	selection  map[string]struct{}
	clipboard  []models.Element
	tool       Tool
	viewport   models.EditorViewport
	validator  *validation.Validator
	catalog    *catalog.Catalog
	lastResult models.ValidationResult
}

// New creates a store with an empty document, validated once so the cached
// result is never stale.
func New(validator *validation.Validator, cat *catalog.Catalog) *Store {
	s := &Store{
		doc:       models.NewLayoutDocument(),
		selection: make(map[string]struct{}),
		tool:      ToolSelect,
		viewport:  models.DefaultViewport(),
		validator: validator,
		catalog:   cat,
	}
	s.lastResult = validator.Validate(s.doc)
	return s
}

// SetDocument replaces the canonical document wholesale (import/reset).
// A structurally invalid document is stored as-is and reported through the
// validation result so the user can fix it in place. Passing nil is
// programmer error and panics.
func (s *Store) SetDocument(doc *models.LayoutDocument) {
	if doc == nil {
		panic("store: SetDocument called with nil document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.Clone()
	s.purgeSelectionLocked()
	s.revalidateLocked()

	// Normalize after validating, so a missing elements sequence still
	// surfaces as an error while the stored slice stays non-nil for
	// append-based mutations.
	if s.doc.Elements == nil {
		s.doc.Elements = make([]models.Element, 0)
	}
}

// CreateElement synthesizes a new element of the given kind at (x, y) and
// appends it to the top of the z-order. The id is generated and guaranteed
// unique within the document. An empty sensor falls back to the catalog's
// first suggestion. Returns the new element's id.
func (s *Store) CreateElement(kind models.ElementType, x, y float64, sensor string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.catalog.Lookup(kind)
	if sensor == "" && len(entry.SuggestedSensors) > 0 {
		sensor = entry.SuggestedSensors[0]
	}

	el := models.Element{
		ID:             s.generateIDLocked(string(kind)),
		Type:           kind,
		Sensor:         sensor,
		Visual:         models.DefaultVisual(x, y, entry.DefaultSize.Width, entry.DefaultSize.Height),
		Animated:       true,
		AnimationSpeed: 1.0,
	}

	s.doc.Elements = append(s.doc.Elements, el)
	s.revalidateLocked()
	return el.ID
}

// UpdateElement merges a partial update into the element with the given
// id. Unknown ids are a silent no-op; that contract is verified by tests,
// not an accident. Returns whether the element existed.
func (s *Store) UpdateElement(id string, update models.ElementUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindElement(id)
	if idx < 0 {
		return false
	}

	update.Apply(&s.doc.Elements[idx])
	s.revalidateLocked()
	return true
}

// RemoveElement deletes the element and purges it from the selection. The
// clipboard holds value copies and is deliberately left untouched.
// Removing a non-existent id is a no-op.
func (s *Store) RemoveElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindElement(id)
	if idx < 0 {
		return
	}

	s.doc.Elements = append(s.doc.Elements[:idx], s.doc.Elements[idx+1:]...)
	delete(s.selection, id)
	s.revalidateLocked()
}

// DuplicateElement clones the element under a fresh derived id, offset by
// DuplicateOffset so the copy is visible, and appends it to the top of the
// z-order. Returns the new id, or "" if the source does not exist.
func (s *Store) DuplicateElement(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindElement(id)
	if idx < 0 {
		return ""
	}

	clone := s.doc.Elements[idx]
	clone.ID = s.generateIDLocked(clone.ID + "_copy")
	clone.Visual.X += DuplicateOffset
	clone.Visual.Y += DuplicateOffset

	s.doc.Elements = append(s.doc.Elements, clone)
	s.revalidateLocked()
	return clone.ID
}

// Select replaces the selection with the given ids, filtered to elements
// present in the document. Non-existent ids are ignored.
func (s *Store) Select(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.doc.FindElement(id) >= 0 {
			s.selection[id] = struct{}{}
		}
	}
}

// ToggleSelection adds or removes one id from the selection. Toggling a
// non-existent id is ignored.
func (s *Store) ToggleSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, selected := s.selection[id]; selected {
		delete(s.selection, id)
		return
	}
	if s.doc.FindElement(id) >= 0 {
		s.selection[id] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// CopySelected snapshots the selected elements into the clipboard as value
// copies, in document order. An empty selection clears the clipboard.
func (s *Store) CopySelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = s.selectedElementsLocked()
}

// CutSelected copies the selected elements and removes them from the
// document.
func (s *Store) CutSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clipboard = s.selectedElementsLocked()
	if len(s.clipboard) == 0 {
		return
	}

	kept := s.doc.Elements[:0]
	for _, el := range s.doc.Elements {
		if _, selected := s.selection[el.ID]; !selected {
			kept = append(kept, el)
		}
	}
	s.doc.Elements = kept
	s.selection = make(map[string]struct{})
	s.revalidateLocked()
}

// Paste clones the clipboard contents into the document under fresh ids,
// offset like duplicates, and selects the pasted elements. Pasting an
// empty clipboard is a no-op. Returns the new ids in paste order.
func (s *Store) Paste() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clipboard) == 0 {
		return nil
	}

	pasted := make([]string, 0, len(s.clipboard))
	s.selection = make(map[string]struct{}, len(s.clipboard))
	for _, src := range s.clipboard {
		clone := src
		clone.ID = s.generateIDLocked(src.ID + "_copy")
		clone.Visual.X += DuplicateOffset
		clone.Visual.Y += DuplicateOffset
		s.doc.Elements = append(s.doc.Elements, clone)
		s.selection[clone.ID] = struct{}{}
		pasted = append(pasted, clone.ID)
	}

	s.revalidateLocked()
	return pasted
}

// SetTool switches the active canvas tool.
func (s *Store) SetTool(tool Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = tool
}

// Tool returns the active canvas tool.
func (s *Store) Tool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetViewport merges a partial viewport change. Zoom and grid size are
// clamped to their allowed ranges rather than rejected.
func (s *Store) SetViewport(update models.ViewportUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.ZoomFactor != nil {
		s.viewport.ZoomFactor = clamp(*update.ZoomFactor, models.MinZoom, models.MaxZoom)
	}
	if update.PanOffset != nil {
		s.viewport.PanOffset = *update.PanOffset
	}
	if update.GridSize != nil {
		s.viewport.GridSize = clamp(*update.GridSize, models.MinGridSize, models.MaxGridSize)
	}
	if update.SnapEnabled != nil {
		s.viewport.SnapEnabled = *update.SnapEnabled
	}
}

// Viewport returns the current viewport state.
func (s *Store) Viewport() models.EditorViewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Document returns a deep copy of the current document.
func (s *Store) Document() *models.LayoutDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Element returns a value copy of the element with the given id.
func (s *Store) Element(id string) (models.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.doc.FindElement(id)
	if idx < 0 {
		return models.Element{}, false
	}
	return s.doc.Elements[idx], true
}

// Selection returns the selected ids, sorted for stable output.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether the id is currently selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// ClipboardLen returns the number of elements on the clipboard.
func (s *Store) ClipboardLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clipboard)
}

// Validate re-runs the validation engine and returns the cached result.
func (s *Store) Validate() models.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revalidateLocked()
	return s.lastResult
}

// ValidationResult returns the cached result from the last mutation.
func (s *Store) ValidationResult() models.ValidationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

func (s *Store) revalidateLocked() {
	s.lastResult = s.validator.Validate(s.doc)
}

// purgeSelectionLocked drops selected ids that no longer resolve.
func (s *Store) purgeSelectionLocked() {
	for id := range s.selection {
		if s.doc.FindElement(id) < 0 {
			delete(s.selection, id)
		}
	}
}

// generateIDLocked derives a collision-free id from base. Bare kind names
// always get a numeric suffix ("gauge_1"); derived bases like
// "gauge_1_copy" are used as-is when free, suffixed otherwise.
func (s *Store) generateIDLocked(base string) string {
	if !models.IsValidElementType(models.ElementType(base)) && s.doc.FindElement(base) < 0 {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if s.doc.FindElement(candidate) < 0 {
			return candidate
		}
	}
}

func (s *Store) selectedElementsLocked() []models.Element {
	out := make([]models.Element, 0, len(s.selection))
	for _, el := range s.doc.Elements {
		if _, selected := s.selection[el.ID]; selected {
			out = append(out, el)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
