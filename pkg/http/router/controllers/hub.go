package controllers

import (
	"encoding/json"
	"io"
	"net"
	"sort"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/raptorx/pkg/pathoutput"
)

// streamRequest is the single message a websocket client sends to kick
// off a profile query; results then stream back one profileResultEnvelope
// per departure as it completes, instead of waiting for the full batch
// like the HTTP /journeys/profile endpoint does.
type streamRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"required,min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"required,min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"required,min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"required,min=-180,max=180"`
	DeparturesUnix []int64 `json:"departures_unix" validate:"required,min=1"`
}

// User is one connected websocket client, reading profile-query requests
// and writing back streamed results, the same read/write-under-lock
// shape as the teacher's online map-matcher User.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

func (u *User) readRequest() (*streamRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &streamRequest{}
	if err := json.NewDecoder(r).Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// StreamProfile reads one profile query request and streams its results
// back, one message per completed departure, via the hub's
// StreamService (spec.md §6's profile compute_all).
func (u *User) StreamProfile() error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}
	if req == nil {
		return nil
	}

	if err := validateStreamRequest(req); err != nil {
		return u.write(envelope{"error": map[string]string{
			"code":    "bad_request",
			"message": err.Error(),
		}})
	}

	return u.hub.streamService.ComputeProfileStream(
		req.OriginLat, req.OriginLon, req.DestinationLat, req.DestinationLon, req.DeparturesUnix, nil,
		func(departureUnix int64, paths []pathoutput.Path) {
			_ = u.write(envelope{"data": profileResultEnvelope{DepartureUnix: departureUnix, Paths: paths}})
		},
	)
}

func validateStreamRequest(req *streamRequest) error {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		errs := translateError(err, trans)
		if len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

func (u *User) write(x any) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}
	return w.Flush()
}

// Hub tracks every connected streaming client, grounded on the
// teacher's Hub (register/remove by sequential ID, protected by one
// RWMutex).
type Hub struct {
	mu            sync.RWMutex
	seq           uint
	us            []*User
	ns            map[uint]*User
	streamService StreamService
}

func NewHub(streamService StreamService) *Hub {
	return &Hub{
		ns:            make(map[uint]*User),
		us:            make([]*User, 0),
		streamService: streamService,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{hub: h, conn: conn}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)
	h.seq++
	h.mu.Unlock()

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool { return h.us[i].id >= user.id })
	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs
}

func (h *Hub) RemoveAllUsers() {
	h.mu.RLock()
	users := append([]*User(nil), h.us...)
	h.mu.RUnlock()
	for _, user := range users {
		h.Remove(user)
	}
}
