package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

type methodResponse struct {
	Index        int      `json:"index"`
	Name         string   `json:"name"`
	FajrAngle    float64  `json:"fajr_angle"`
	IshaAngle    float64  `json:"isha_angle,omitempty"`
	IshaInterval float64  `json:"isha_interval,omitempty"`
	Mathhab      string   `json:"mathhab"`
	Countries    []string `json:"countries,omitempty"`
}

func newMethodResponse(m method.Method) methodResponse {
	return methodResponse{
		Index:        m.ID,
		Name:         m.Name,
		FajrAngle:    m.FajrAngle,
		IshaAngle:    m.IshaAngle,
		IshaInterval: m.IshaInterval,
		Mathhab:      m.Mathhab.String(),
		Countries:    m.CountryCodes(),
	}
}

type prayerResponse struct {
	Period  string    `json:"period"`
	Name    string    `json:"name"`
	Time    time.Time `json:"time"`
	Display string    `json:"display"`
	Extreme bool      `json:"extreme,omitempty"`
}

type scheduleResponse struct {
	Date     string           `json:"date"`
	Timezone string           `json:"timezone"`
	Method   methodResponse   `json:"method"`
	Qibla    float64          `json:"qibla"`
	Next     string           `json:"next"`
	Prayers  []prayerResponse `json:"prayers"`
}

type nextResponse struct {
	prayerResponse
	RemainingSeconds int64  `json:"remaining_seconds"`
	Remaining        string `json:"remaining"`
}

type alarmResponse struct {
	ID       int       `json:"id"`
	Kind     string    `json:"kind"`
	Period   string    `json:"period"`
	Label    string    `json:"label"`
	FireAt   time.Time `json:"fire_at"`
	PrayerAt time.Time `json:"prayer_at"`
}

type resolveResponse struct {
	Method methodResponse `json:"method"`
	Qibla  float64        `json:"qibla"`
}

// snapshot reads settings and maps their failures to HTTP errors.
func (s *Server) snapshot() (scheduler.Snapshot, *Error) {
	snap, err := s.Scheduler.Snapshot()
	if errors.Is(err, scheduler.ErrMissingLocation) {
		return snap, &Error{Code: http.StatusConflict, Message: err.Error()}
	}
	if err != nil {
		return snap, &Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return snap, nil
}

func calcError(err error) *Error {
	if errors.Is(err, prayer.ErrInvalidMethodIndex) || errors.Is(err, prayer.ErrInvalidRoundingIndex) {
		return &Error{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	}
	return &Error{Code: http.StatusBadGateway, Message: err.Error()}
}

func translator(ctx *gin.Context, snap scheduler.Snapshot) *locale.Translator {
	return locale.New(ctx.DefaultQuery("lang", snap.Language))
}

func (s *Server) schedule(ctx *gin.Context) (any, *Error) {
	snap, apiErr := s.snapshot()
	if apiErr != nil {
		return nil, apiErr
	}

	date := s.Scheduler.Clock.Now().In(snap.Location.Zone())
	if raw := ctx.Query("date"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, snap.Location.Zone())
		if err != nil {
			return nil, &Error{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DD"}
		}
		date = d
	}

	sched, err := s.Scheduler.ScheduleFor(snap, date)
	if err != nil {
		return nil, calcError(err)
	}

	tr := translator(ctx, snap)
	resp := scheduleResponse{
		Date:     sched.Date.Format("2006-01-02"),
		Timezone: astro.ZoneName(snap.Location.UTCOffset),
		Method:   newMethodResponse(sched.Method),
		Qibla:    astro.Qibla(snap.Location),
		Next:     sched.Next.Key(),
	}
	for p := prayer.Fajr; p < prayer.PeriodCount; p++ {
		resp.Prayers = append(resp.Prayers, newPrayerResponse(sched, p, tr, snap.TimeFormat))
	}
	return resp, nil
}

func newPrayerResponse(sched *prayer.Schedule, p prayer.Period, tr *locale.Translator, format string) prayerResponse {
	return prayerResponse{
		Period:  p.Key(),
		Name:    tr.PeriodName(p),
		Time:    sched.Time(p),
		Display: sched.Format(p, format),
		Extreme: sched.Extremes[p],
	}
}

func (s *Server) next(ctx *gin.Context) (any, *Error) {
	snap, apiErr := s.snapshot()
	if apiErr != nil {
		return nil, apiErr
	}
	sched, err := s.Scheduler.Today(snap)
	if err != nil {
		return nil, calcError(err)
	}

	now := s.Scheduler.Clock.Now()
	p := sched.NextAt(now)
	remaining := sched.Time(p).Sub(now)
	return nextResponse{
		prayerResponse:   newPrayerResponse(sched, p, translator(ctx, snap), snap.TimeFormat),
		RemainingSeconds: int64(remaining / time.Second),
		Remaining:        prayer.FormatRemaining(remaining),
	}, nil
}

func (s *Server) alarms(ctx *gin.Context) (any, *Error) {
	out := []alarmResponse{}
	if s.Alarms == nil {
		return out, nil
	}
	events, err := s.Alarms.Pending(ctx.Request.Context())
	if err != nil {
		return nil, &Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	for _, ev := range events {
		out = append(out, alarmResponse{
			ID:       ev.ID,
			Kind:     ev.Kind.String(),
			Period:   ev.Period.Key(),
			Label:    ev.Label,
			FireAt:   ev.FireAt,
			PrayerAt: ev.PrayerAt,
		})
	}
	return out, nil
}

func (s *Server) methods(ctx *gin.Context) (any, *Error) {
	all := method.All()
	out := make([]methodResponse, len(all))
	for i, m := range all {
		out[i] = newMethodResponse(m)
	}
	return out, nil
}

func (s *Server) resolve(ctx *gin.Context) (any, *Error) {
	lat, err1 := strconv.ParseFloat(ctx.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(ctx.Query("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, &Error{Code: http.StatusBadRequest, Message: "lat and lon must be valid coordinates"}
	}

	idx := s.Resolver.ResolveFromLocation(ctx.Request.Context(), lat, lon)
	m, err := method.Lookup(idx)
	if err != nil {
		return nil, &Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return resolveResponse{
		Method: newMethodResponse(m),
		Qibla:  astro.Qibla(astro.NewLocation(lat, lon, 0, 0, 0, 0)),
	}, nil
}
