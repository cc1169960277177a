// Package previewws serves a live preview of the Butler's current
// output over a websocket: every connected browser receives the same
// JSON-encoded frame metadata as playback advances. It is grounded on
// the websocket-FLV subscriber/broadcast handler in the corpus, adapted
// from streaming an FLV byte stream to broadcasting small JSON frames.
package previewws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"dcpflow/internal/player"
)

// Frame is the JSON payload sent to every connected preview client.
type Frame struct {
	TimeTicks int64  `json:"time_ticks"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Eyes      string `json:"eyes"`
	HasImage  bool   `json:"has_image"`
}

func frameFromVideo(v *player.Video) Frame {
	f := Frame{TimeTicks: v.Time.Get(), HasImage: v.Image != nil}
	switch v.Eyes {
	case 1:
		f.Eyes = "left"
	case 2:
		f.Eyes = "right"
	default:
		f.Eyes = "both"
	}
	if v.Image != nil {
		f.Width, f.Height = v.Image.Size()
	}
	return f
}

type subscriber struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub broadcasts Frames to every attached subscriber. Attach/Detach
// mirror the registry-backed stream attach/detach lifecycle the corpus
// uses for media subscribers, generalized from one stream per app/name
// key to one shared preview stream.
type Hub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	upgrader websocket.Upgrader
}

// NewHub builds a Hub. A nil logger falls back to slog.Default.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:  log,
		subs: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast sends v to every connected subscriber, dropping it for any
// subscriber whose outbound buffer is full rather than blocking the
// whole broadcast on one slow client.
func (h *Hub) Broadcast(v *player.Video) {
	f := frameFromVideo(v)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.send <- f:
		default:
			h.log.Debug("dropping preview frame for slow subscriber")
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams Frames to it
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := &subscriber{conn: conn, send: make(chan Frame, 8)}
	h.attach(sub)
	defer conn.Close()

	// A client sends nothing once subscribed; this read loop exists only
	// to notice when it disconnects, since gorilla/websocket requires a
	// live reader to observe close frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.detach(sub)
				return
			}
		}
	}()

	for f := range sub.send {
		data, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.detach(sub)
			return
		}
	}
}

func (h *Hub) attach(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
}

func (h *Hub) detach(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

// SubscriberCount reports how many clients are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
