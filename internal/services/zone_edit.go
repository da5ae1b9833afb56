package services

import (
	"context"
	"errors"

	"hazard-admin/internal/models"
)

// Editing never removes the original zone: BeginEdit only remembers which zone
// is being edited, and the list changes when CommitEdit succeeds. Abandoning
// an edit with DiscardEdit leaves the zone exactly as it was.

// BeginEdit starts editing zone id and returns a draft prefilled with its
// values. Any edit already in progress is abandoned.
func (s *ZoneStore) BeginEdit(id string) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.zones, id)
	if i < 0 {
		return models.Draft{}, &NotFoundError{ID: id}
	}

	d := models.DraftFrom(s.zones[i])
	s.edit = &pendingEdit{zoneID: id, draft: d}
	return d, nil
}

// PendingEdit returns the draft being edited and the id of its zone.
func (s *ZoneStore) PendingEdit() (models.Draft, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return models.Draft{}, "", false
	}
	return s.edit.draft, s.edit.zoneID, true
}

// StepEditRadius nudges the pending draft's radius by one wheel notch.
func (s *ZoneStore) StepEditRadius(deltaY float64) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return models.Draft{}, ErrNoActiveEdit
	}
	s.edit.draft.Radius = models.StepRadius(s.edit.draft.Radius, deltaY, s.validator.MinRadius())
	return s.edit.draft, nil
}

// StepDraftRadius applies one wheel notch to a zone that is still being drawn
// and has no pending edit. The store is not touched.
func (s *ZoneStore) StepDraftRadius(d models.Draft, deltaY float64) models.Draft {
	d.Radius = models.StepRadius(d.Radius, deltaY, s.validator.MinRadius())
	return d
}

// CommitEdit saves d over the zone being edited. The pending edit is cleared
// when the save succeeds or when the zone no longer exists; a validation
// failure keeps it so the user can correct the draft.
func (s *ZoneStore) CommitEdit(ctx context.Context, d models.Draft) (models.HazardZone, error) {
	var (
		updated models.HazardZone
		edit    *pendingEdit
	)

	err := s.mutate(ctx, func(zones []models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		edit = s.edit
		if edit == nil {
			return nil, ZoneChange{}, ErrNoActiveEdit
		}
		next, z, err := s.applyUpdate(zones, edit.zoneID, d)
		updated = z
		return next, ZoneChange{Op: OpUpdate, ZoneID: edit.zoneID}, err
	})

	if err == nil || errors.Is(err, ErrNotFound) {
		s.clearEdit(edit)
	} else if errors.Is(err, ErrValidation) {
		s.keepDraft(edit, d)
	}
	if err != nil {
		return models.HazardZone{}, err
	}
	return updated, nil
}

// DiscardEdit abandons the pending edit, leaving the zone list untouched.
func (s *ZoneStore) DiscardEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// clearEdit drops edit unless another BeginEdit has replaced it meanwhile.
func (s *ZoneStore) clearEdit(edit *pendingEdit) {
	if edit == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == edit {
		s.edit = nil
	}
}

func (s *ZoneStore) keepDraft(edit *pendingEdit, d models.Draft) {
	if edit == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == edit {
		s.edit.draft = d
	}
}
