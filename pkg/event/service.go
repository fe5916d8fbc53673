package event

import (
	"context"
	"time"

	"github.com/gosimple/slug"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(repository *repository) *Service {
	return &Service{repository}
}

type Service struct {
	repository *repository
}

type CreateEvent struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
	Roles       []string
	Songs       []CreateSong
}

type CreateSong struct {
	Title  string
	Artist string
	Key    string
	Notes  string
}

func (s Service) Create(ctx context.Context, userId uint, create CreateEvent) (*model.Event, error) {
	event := &model.Event{
		Title:       create.Title,
		Slug:        slug.Make(create.Title),
		Date:        create.Date,
		Location:    create.Location,
		Description: create.Description,
		Status:      model.EventStatusDraft,
		CreatedByID: userId,
	}

	for _, role := range create.Roles {
		event.Personnel = append(event.Personnel, model.EventPersonnel{Role: role})
	}

	for i, song := range create.Songs {
		event.Songs = append(event.Songs, model.EventSong{
			Title:    song.Title,
			Artist:   song.Artist,
			Key:      song.Key,
			Notes:    song.Notes,
			Position: uint(i) + 1,
		})
	}

	if err := s.repository.create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s Service) FindAll(ctx context.Context, filter Filter) ([]*model.Event, error) {
	return s.repository.findAll(ctx, filter)
}

func (s Service) FindById(ctx context.Context, id uint) (*model.Event, error) {
	return s.repository.findById(ctx, id)
}

type UpdateEvent struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
}

func (s Service) Update(ctx context.Context, id uint, update UpdateEvent) (*model.Event, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.Status != model.EventStatusDraft && event.Status != model.EventStatusSubmitted {
		return nil, errdef.NewConflict("event %d can no longer be edited in status %s", id, event.Status)
	}

	event.Title = update.Title
	event.Slug = slug.Make(update.Title)
	event.Date = update.Date
	event.Location = update.Location
	event.Description = update.Description

	if err := s.repository.save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s Service) Delete(ctx context.Context, id uint) error {
	return s.repository.delete(ctx, id)
}

var statusTransitions = map[model.EventStatus]map[model.EventStatus]bool{
	model.EventStatusDraft:     {model.EventStatusSubmitted: true},
	model.EventStatusSubmitted: {model.EventStatusPublished: true, model.EventStatusRejected: true},
	model.EventStatusPublished: {model.EventStatusFinished: true},
}

func (s Service) transition(ctx context.Context, id uint, to model.EventStatus) (*model.Event, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	if !statusTransitions[event.Status][to] {
		return nil, errdef.NewConflict("event %d cannot go from %s to %s", id, event.Status, to)
	}

	var publishedAt *time.Time
	if to == model.EventStatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	if err := s.repository.updateStatus(ctx, event, to, publishedAt); err != nil {
		return nil, err
	}

	event.Status = to
	if publishedAt != nil {
		event.PublishedAt = publishedAt
	}
	return event, nil
}

// Submit moves a draft into the moderation queue. Only the creator or a
// manager may submit.
func (s Service) Submit(ctx context.Context, id uint, user *model.User) (*model.Event, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.CreatedByID != user.ID && !user.IsManager() {
		return nil, errdef.NewForbidden("only the event creator or a manager can submit event %d", id)
	}

	return s.transition(ctx, id, model.EventStatusSubmitted)
}

func (s Service) Publish(ctx context.Context, id uint) (*model.Event, error) {
	return s.transition(ctx, id, model.EventStatusPublished)
}

func (s Service) Reject(ctx context.Context, id uint) (*model.Event, error) {
	return s.transition(ctx, id, model.EventStatusRejected)
}

func (s Service) Finish(ctx context.Context, id uint) (*model.Event, error) {
	return s.transition(ctx, id, model.EventStatusFinished)
}

func (s Service) AddSlot(ctx context.Context, eventId uint, role string) (*model.EventPersonnel, error) {
	if _, err := s.repository.findById(ctx, eventId); err != nil {
		return nil, err
	}

	personnel := &model.EventPersonnel{
		EventID: eventId,
		Role:    role,
		Status:  model.PersonnelStatusPending,
	}
	if err := s.repository.createPersonnel(ctx, personnel); err != nil {
		return nil, err
	}
	return personnel, nil
}

// Register claims an empty seat for the given user. A member can hold at
// most one seat per event.
func (s Service) Register(ctx context.Context, eventId, personnelId, userId uint) (*model.EventPersonnel, error) {
	personnel, err := s.repository.findPersonnel(ctx, eventId, personnelId)
	if err != nil {
		return nil, err
	}

	if personnel.UserID != nil {
		return nil, errdef.NewConflict("personnel slot %d is already taken", personnelId)
	}

	registrations, err := s.repository.countRegistrations(ctx, eventId, userId)
	if err != nil {
		return nil, err
	}
	if registrations > 0 {
		return nil, errdef.NewDuplicated("user %d is already registered for event %d", userId, eventId)
	}

	if err := s.repository.fillSlot(ctx, personnelId, userId); err != nil {
		return nil, err
	}

	return s.repository.findPersonnel(ctx, eventId, personnelId)
}

func (s Service) ApproveRegistration(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error) {
	return s.moderateRegistration(ctx, eventId, personnelId, model.PersonnelStatusApproved)
}

func (s Service) RejectRegistration(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error) {
	return s.moderateRegistration(ctx, eventId, personnelId, model.PersonnelStatusRejected)
}

func (s Service) moderateRegistration(ctx context.Context, eventId, personnelId uint, status model.PersonnelStatus) (*model.EventPersonnel, error) {
	personnel, err := s.repository.findPersonnel(ctx, eventId, personnelId)
	if err != nil {
		return nil, err
	}

	if personnel.UserID == nil {
		return nil, errdef.NewConflict("personnel slot %d has no registration to moderate", personnelId)
	}
	if personnel.Status != model.PersonnelStatusPending {
		return nil, errdef.NewConflict("registration on slot %d was already moderated", personnelId)
	}

	personnel.Status = status
	if status == model.PersonnelStatusApproved {
		now := time.Now()
		personnel.ApprovedAt = &now
	}

	if err := s.repository.savePersonnel(ctx, personnel); err != nil {
		return nil, err
	}
	return personnel, nil
}

// CancelRegistration releases the caller's seat back to empty.
func (s Service) CancelRegistration(ctx context.Context, eventId, personnelId, userId uint) error {
	personnel, err := s.repository.findPersonnel(ctx, eventId, personnelId)
	if err != nil {
		return err
	}

	if personnel.UserID == nil || *personnel.UserID != userId {
		return errdef.NewForbidden("user %d holds no registration on slot %d", userId, personnelId)
	}

	return s.repository.releaseSlot(ctx, personnelId)
}

func (s Service) AddSong(ctx context.Context, eventId uint, create CreateSong) (*model.EventSong, error) {
	if _, err := s.repository.findById(ctx, eventId); err != nil {
		return nil, err
	}

	song := &model.EventSong{
		EventID: eventId,
		Title:   create.Title,
		Artist:  create.Artist,
		Key:     create.Key,
		Notes:   create.Notes,
	}
	if err := s.repository.createSong(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s Service) UpdateSong(ctx context.Context, eventId, songId uint, update CreateSong) (*model.EventSong, error) {
	song, err := s.repository.findSong(ctx, eventId, songId)
	if err != nil {
		return nil, err
	}

	song.Title = update.Title
	song.Artist = update.Artist
	song.Key = update.Key
	song.Notes = update.Notes

	if err := s.repository.saveSong(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s Service) DeleteSong(ctx context.Context, eventId, songId uint) error {
	return s.repository.deleteSong(ctx, eventId, songId)
}

func (s Service) ReorderSongs(ctx context.Context, eventId uint, songIds []uint) error {
	return s.repository.reorderSongs(ctx, eventId, songIds)
}
