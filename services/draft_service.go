package services

import (
	"errors"

	"dailyread/models"

	"gorm.io/gorm"
)

type DraftService struct {
	db *gorm.DB
}

func NewDraftService(db *gorm.DB) *DraftService {
	return &DraftService{db: db}
}

// Get returns the session's draft, or an empty closed one if it has none yet.
func (s *DraftService) Get(sessionID string) (*models.Draft, error) {
	var draft models.Draft
	err := s.db.Where("session_id = ?", sessionID).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Draft{SessionID: sessionID, Category: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if draft.Category == nil {
		draft.Category = []string{}
	}
	return &draft, nil
}

func (s *DraftService) Save(draft *models.Draft) error {
	if draft.ID == 0 {
		return s.db.Create(draft).Error
	}
	return s.db.Save(draft).Error
}

func (s *DraftService) SetOpen(sessionID string, open bool) (*models.Draft, error) {
	draft, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft.Open = open
	if err := s.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// AddCategory stores the posted fields and moves the pending tag into the
// category list. The pending input is cleared only when the tag was added.
func (s *DraftService) AddCategory(sessionID string, form models.DraftForm) (*models.Draft, error) {
	draft, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft.Apply(form)
	draft.Open = true

	var added bool
	draft.Category, added = models.AddCategory(draft.Category, form.PendingCategory)
	if added {
		draft.PendingCategory = ""
	}
	if err := s.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) RemoveCategory(sessionID string, form models.DraftForm, tag string) (*models.Draft, error) {
	draft, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft.Apply(form)
	draft.Open = true
	draft.Category = models.RemoveCategory(draft.Category, tag)
	if err := s.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Update stores the posted fields without touching the dialog state.
func (s *DraftService) Update(sessionID string, form models.DraftForm) (*models.Draft, error) {
	draft, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft.Apply(form)
	if err := s.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Stage stores the posted fields and keeps the dialog open, ready for submission.
func (s *DraftService) Stage(sessionID string, form models.DraftForm) (*models.Draft, error) {
	draft, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft.Apply(form)
	draft.Open = true
	if err := s.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) Reset(sessionID string) error {
	draft, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if draft.ID == 0 {
		return nil
	}
	draft.Reset()
	return s.Save(draft)
}
