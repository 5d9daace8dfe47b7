// Package reminder mails today's trial-lesson bookings and marks each one
// SENT so later runs skip it.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/mail"
	hmetrics "github.com/joeydtaylor/terakoya-core/pkg/middleware/metrics"
)

type Store interface {
	ListPendingReminders(ctx context.Context) ([]booking.Item, error)
	UpdateReminded(ctx context.Context, sk string) error
}

// Report counts per-booking outcomes of one run.
type Report struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Dispatcher struct {
	store    Store
	sender   mail.Sender
	imageDir string
	cc       string
	log      *zap.Logger
}

func NewDispatcher(store Store, sender mail.Sender, imageDir, cc string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{store: store, sender: sender, imageDir: imageDir, cc: cc, log: log}
}

// Run sends one reminder per pending booking. A failed send leaves the
// booking NOT_SENT for the next run; losing the SENT race to a concurrent
// run counts as skipped.
func (d *Dispatcher) Run(ctx context.Context) (Report, error) {
	var rep Report
	items, err := d.store.ListPendingReminders(ctx)
	if err != nil {
		return rep, fmt.Errorf("list pending reminders: %w", err)
	}

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		log := d.log.With(zap.String("component", "reminder"), zap.String("date", it.Date), zap.String("terakoyaType", string(it.TerakoyaType)))

		if err := d.sender.Send(ctx, d.message(it)); err != nil {
			rep.Failed++
			hmetrics.ObserveReminder("failed")
			log.Error("reminder send failed", zap.Error(err))
			continue
		}

		err := d.store.UpdateReminded(ctx, it.SK)
		switch {
		case err == nil:
			rep.Sent++
			hmetrics.ObserveReminder("sent")
		case errors.Is(err, apperr.ErrAlreadyReminded):
			rep.Skipped++
			hmetrics.ObserveReminder("skipped")
			log.Info("booking already reminded")
		default:
			rep.Failed++
			hmetrics.ObserveReminder("failed")
			log.Error("mark reminded failed", zap.Error(err))
		}
	}
	log := d.log.With(zap.String("component", "reminder"))
	log.Info("reminder run finished", zap.Int("sent", rep.Sent), zap.Int("skipped", rep.Skipped), zap.Int("failed", rep.Failed))
	return rep, nil
}

var placeNames = map[booking.Place]string{
	booking.PlaceTBD:     "調整中",
	booking.PlaceOnline:  "オンライン",
	booking.PlaceSakura:  "さくら教室",
	booking.PlaceKashiwa: "柏教室",
	booking.PlaceTokyo:   "東京教室",
}

func (d *Dispatcher) message(it booking.Item) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s 様</p>", html.EscapeString(it.Name))
	b.WriteString("<p>本日は寺子屋の体験授業の日です。ご来場をお待ちしております。</p>")
	fmt.Fprintf(&b, "<p>日付: %s<br/>", html.EscapeString(it.Date))
	if it.ArrivalTime != "" {
		fmt.Fprintf(&b, "到着予定時刻: %s<br/>", html.EscapeString(it.ArrivalTime))
	}
	fmt.Fprintf(&b, "会場: %s</p>", placeNames[it.Place])

	m := mail.Message{
		To:      it.Email,
		CC:      d.cc,
		Subject: "【寺子屋】本日の体験授業のご案内",
		Body:    b.String(),
	}
	if d.imageDir != "" && it.Place != booking.PlaceOnline && it.Place != booking.PlaceTBD {
		m.ImagePath = filepath.Join(d.imageDir, strings.ToLower(string(it.Place))+".png")
	}
	return m
}
