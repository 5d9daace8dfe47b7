package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/core"
)

type bookingRequest struct {
	Date              string               `json:"date" validate:"required,datetime=2006-01-02"`
	Email             string               `json:"email" validate:"required,email"`
	Name              string               `json:"name" validate:"required"`
	TerakoyaType      booking.TerakoyaType `json:"terakoya_type" validate:"required"`
	Place             booking.Place        `json:"place" validate:"required"`
	ArrivalTime       string               `json:"arrival_time"`
	Grade             string               `json:"grade"`
	FirstChoiceSchool string               `json:"first_choice_school"`
	CourseChoice      string               `json:"course_choice"`
	FutureFree        string               `json:"future_free"`
	LikeThingFree     string               `json:"like_thing_free"`
	HowToKnow         string               `json:"how_to_know"`
	Remarks           string               `json:"remarks"`
}

// insertBooking derives sk, remind status and created_at; clients never set them.
func (h *Handlers) insertBooking(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	var in bookingRequest
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	it := booking.Item{
		Date:              in.Date,
		SK:                booking.GenerateSK(in.Email, in.TerakoyaType),
		Email:             in.Email,
		Name:              in.Name,
		TerakoyaType:      in.TerakoyaType,
		Place:             in.Place,
		ArrivalTime:       in.ArrivalTime,
		Grade:             in.Grade,
		FirstChoiceSchool: in.FirstChoiceSchool,
		CourseChoice:      in.CourseChoice,
		FutureFree:        in.FutureFree,
		LikeThingFree:     in.LikeThingFree,
		HowToKnow:         in.HowToKnow,
		Remarks:           in.Remarks,
		IsReminded:        booking.NotSent,
		CreatedAt:         h.bookings.Now().Format(time.RFC3339),
	}
	if err := h.bookings.Insert(r.Context(), it); err != nil {
		return nil, 0, err
	}
	return it, http.StatusCreated, nil
}

func (h *Handlers) listBookings(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	date := r.Param("date")
	if err := checkVar(date, tagDate); err != nil {
		return nil, 0, err
	}
	items, err := h.bookings.ListByDate(r.Context(), date)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []booking.Item{}
	}
	return items, 0, nil
}

type updatePlaceRequest struct {
	Date  string        `json:"date" validate:"required,datetime=2006-01-02"`
	SK    string        `json:"sk" validate:"required"`
	Place booking.Place `json:"place" validate:"required"`
}

func (h *Handlers) updatePlace(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	var in updatePlaceRequest
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	if err := h.bookings.UpdatePlace(r.Context(), in.Date, in.SK, in.Place); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}

func (h *Handlers) remind(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	rep, err := h.reminders.Run(r.Context())
	if err != nil {
		return nil, 0, err
	}
	h.log.Info("reminders dispatched", zap.String("component", "api"),
		zap.Int("sent", rep.Sent), zap.Int("failed", rep.Failed))
	return rep, 0, nil
}
