package event

import (
	"context"
	"net/http"
	"time"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/internal/handler"
	"github.com/suara-kampus/band-manager/pkg/model"

	"github.com/gin-gonic/gin"
)

func NewHandler(eventService eventService) Handler {
	return Handler{eventService}
}

type Handler struct {
	eventService eventService
}

type eventService interface {
	Create(ctx context.Context, userId uint, create CreateEvent) (*model.Event, error)
	FindAll(ctx context.Context, filter Filter) ([]*model.Event, error)
	FindById(ctx context.Context, id uint) (*model.Event, error)
	Update(ctx context.Context, id uint, update UpdateEvent) (*model.Event, error)
	Delete(ctx context.Context, id uint) error
	Submit(ctx context.Context, id uint, user *model.User) (*model.Event, error)
	Publish(ctx context.Context, id uint) (*model.Event, error)
	Reject(ctx context.Context, id uint) (*model.Event, error)
	Finish(ctx context.Context, id uint) (*model.Event, error)
	AddSlot(ctx context.Context, eventId uint, role string) (*model.EventPersonnel, error)
	Register(ctx context.Context, eventId, personnelId, userId uint) (*model.EventPersonnel, error)
	ApproveRegistration(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error)
	RejectRegistration(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error)
	CancelRegistration(ctx context.Context, eventId, personnelId, userId uint) error
	AddSong(ctx context.Context, eventId uint, create CreateSong) (*model.EventSong, error)
	UpdateSong(ctx context.Context, eventId, songId uint, update CreateSong) (*model.EventSong, error)
	DeleteSong(ctx context.Context, eventId, songId uint) error
	ReorderSongs(ctx context.Context, eventId uint, songIds []uint) error
}

type SongRequest struct {
	Title  string `json:"title" binding:"required"`
	Artist string `json:"artist"`
	Key    string `json:"key"`
	Notes  string `json:"notes"`
}

type CreateEventRequest struct {
	Title       string        `json:"title" binding:"required"`
	Date        time.Time     `json:"date" binding:"required"`
	Location    string        `json:"location" binding:"required"`
	Description string        `json:"description"`
	Roles       []string      `json:"roles"`
	Songs       []SongRequest `json:"songs"`
}

// Create event
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /events createEvent
	//
	// Create event
	//
	// Create a draft event with its personnel slots and initial setlist.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: Event
	//   400: Error
	//   401: Error
	var request CreateEventRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	create := CreateEvent{
		Title:       request.Title,
		Date:        request.Date,
		Location:    request.Location,
		Description: request.Description,
		Roles:       request.Roles,
	}
	for _, song := range request.Songs {
		create.Songs = append(create.Songs, CreateSong(song))
	}

	event, err := h.eventService.Create(c.Request.Context(), user.ID, create)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// FindAll events
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /events findAllEvents
	//
	// Find events
	//
	// List events, optionally filtered by status and date window.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []Event
	//   400: Error
	//   401: Error
	filter := Filter{Status: model.EventStatus(c.Query("status"))}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid from parameter: %v", err))
			return
		}
		filter.From = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid to parameter: %v", err))
			return
		}
		filter.To = parsed
	}

	events, err := h.eventService.FindAll(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// FindById event
func (h Handler) FindById(c *gin.Context) {
	// swagger:route GET /events/{id} findEventById
	//
	// Find event
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.FindById(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Description string    `json:"description"`
}

// Update event
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /events/{id} updateEvent
	//
	// Update event
	//
	// Update core fields while the event is still DRAFT or SUBMITTED.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   400: Error
	//   401: Error
	//   404: Error
	//   409: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UpdateEventRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, UpdateEvent(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete event
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /events/{id} deleteEvent
	//
	// Delete event
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   202:
	//   401: Error
	//   403: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Submit event
func (h Handler) Submit(c *gin.Context) {
	// swagger:route PUT /events/{id}/submit submitEvent
	//
	// Submit event
	//
	// Move a draft into the moderation queue.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.eventService.Submit(c.Request.Context(), id, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Publish event
func (h Handler) Publish(c *gin.Context) {
	// swagger:route PUT /events/{id}/publish publishEvent
	//
	// Publish event
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	h.transition(c, h.eventService.Publish)
}

// Reject event
func (h Handler) Reject(c *gin.Context) {
	// swagger:route PUT /events/{id}/reject rejectEvent
	//
	// Reject event
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	h.transition(c, h.eventService.Reject)
}

// Finish event
func (h Handler) Finish(c *gin.Context) {
	// swagger:route PUT /events/{id}/finish finishEvent
	//
	// Finish event
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: Event
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	h.transition(c, h.eventService.Finish)
}

func (h Handler) transition(c *gin.Context, do func(ctx context.Context, id uint) (*model.Event, error)) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := do(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

type AddSlotRequest struct {
	Role string `json:"role" binding:"required"`
}

// AddSlot personnel
func (h Handler) AddSlot(c *gin.Context) {
	// swagger:route POST /events/{id}/personnel addPersonnelSlot
	//
	// Add personnel slot
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: EventPersonnel
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request AddSlotRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	personnel, err := h.eventService.AddSlot(c.Request.Context(), id, request.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, personnel)
}

// Register personnel
func (h Handler) Register(c *gin.Context) {
	// swagger:route POST /events/{id}/personnel/{personnelId}/register registerPersonnel
	//
	// Register for a slot
	//
	// Claim an empty seat in the lineup. The registration starts PENDING
	// until a manager moderates it.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: EventPersonnel
	//   401: Error
	//   404: Error
	//   409: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	personnelId, ok := handler.GetPathParameter(c, "personnelId")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	personnel, err := h.eventService.Register(c.Request.Context(), id, personnelId, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, personnel)
}

// ApproveRegistration personnel
func (h Handler) ApproveRegistration(c *gin.Context) {
	// swagger:route PUT /events/{id}/personnel/{personnelId}/approve approveRegistration
	//
	// Approve registration
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: EventPersonnel
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	h.moderate(c, h.eventService.ApproveRegistration)
}

// RejectRegistration personnel
func (h Handler) RejectRegistration(c *gin.Context) {
	// swagger:route PUT /events/{id}/personnel/{personnelId}/reject rejectRegistration
	//
	// Reject registration
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: EventPersonnel
	//   401: Error
	//   403: Error
	//   404: Error
	//   409: Error
	h.moderate(c, h.eventService.RejectRegistration)
}

func (h Handler) moderate(c *gin.Context, do func(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error)) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	personnelId, ok := handler.GetPathParameter(c, "personnelId")
	if !ok {
		return
	}

	personnel, err := do(c.Request.Context(), id, personnelId)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, personnel)
}

// CancelRegistration personnel
func (h Handler) CancelRegistration(c *gin.Context) {
	// swagger:route DELETE /events/{id}/personnel/{personnelId}/registration cancelRegistration
	//
	// Cancel registration
	//
	// Release the caller's seat back to empty.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200:
	//   401: Error
	//   403: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	personnelId, ok := handler.GetPathParameter(c, "personnelId")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.eventService.CancelRegistration(c.Request.Context(), id, personnelId, user.ID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}

// AddSong setlist
func (h Handler) AddSong(c *gin.Context) {
	// swagger:route POST /events/{id}/songs addSong
	//
	// Add song
	//
	// Append a song at the end of the setlist.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: EventSong
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request SongRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	song, err := h.eventService.AddSong(c.Request.Context(), id, CreateSong(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, song)
}

// UpdateSong setlist
func (h Handler) UpdateSong(c *gin.Context) {
	// swagger:route PUT /events/{id}/songs/{songId} updateSong
	//
	// Update song
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: EventSong
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	songId, ok := handler.GetPathParameter(c, "songId")
	if !ok {
		return
	}

	var request SongRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	song, err := h.eventService.UpdateSong(c.Request.Context(), id, songId, CreateSong(request))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, song)
}

// DeleteSong setlist
func (h Handler) DeleteSong(c *gin.Context) {
	// swagger:route DELETE /events/{id}/songs/{songId} deleteSong
	//
	// Delete song
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   202:
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	songId, ok := handler.GetPathParameter(c, "songId")
	if !ok {
		return
	}

	if err := h.eventService.DeleteSong(c.Request.Context(), id, songId); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

type ReorderSongsRequest struct {
	SongIds []uint `json:"songIds" binding:"required"`
}

// ReorderSongs setlist
func (h Handler) ReorderSongs(c *gin.Context) {
	// swagger:route PUT /events/{id}/songs/order reorderSongs
	//
	// Reorder setlist
	//
	// Rewrite setlist positions to match the given id order. The id list
	// must cover every song on the event.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200:
	//   400: Error
	//   401: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request ReorderSongsRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.eventService.ReorderSongs(c.Request.Context(), id, request.SongIds); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}
