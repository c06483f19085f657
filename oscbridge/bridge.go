package oscbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"tenor/dto"

	"github.com/hypebeast/go-osc/osc"
)

const (
	// SendInterval is the minimum gap between two forwarded readings.
	SendInterval = 100 * time.Millisecond
	// Scale converts Muse absolute band powers to relay units.
	Scale = 100
)

var bandAddresses = map[string]string{
	"/muse/elements/delta_absolute": "delta",
	"/muse/elements/theta_absolute": "theta",
	"/muse/elements/alpha_absolute": "alpha",
	"/muse/elements/beta_absolute":  "beta",
	"/muse/elements/gamma_absolute": "gamma",
}

var bands = []string{"delta", "theta", "alpha", "beta", "gamma"}

// Aggregator collects band values until all five are known and the send
// interval has passed.
type Aggregator struct {
	mu       sync.Mutex
	values   map[string]float64
	lastSent time.Time
	interval time.Duration
}

func NewAggregator(interval time.Duration) *Aggregator {
	return &Aggregator{values: map[string]float64{}, interval: interval, lastSent: time.Now()}
}

// Observe records a message. It returns a reading to forward when one is
// due; the collected values are cleared after each reading.
func (a *Aggregator) Observe(m *osc.Message, now time.Time) (*dto.MuseData, bool) {
	band, ok := bandAddresses[m.Address]
	if !ok {
		return nil, false
	}
	v, ok := firstFloat(m)
	if !ok {
		return nil, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[band] = v * Scale
	if now.Sub(a.lastSent) <= a.interval {
		return nil, false
	}
	for _, b := range bands {
		if _, ok := a.values[b]; !ok {
			return nil, false
		}
	}
	reading := &dto.MuseData{Signals: a.values, Timestamp: now.UnixMilli()}
	a.values = map[string]float64{}
	a.lastSent = now
	return reading, true
}

// Forwarder posts readings to the relay.
type Forwarder struct {
	URL    string
	Client *http.Client
}

func (f *Forwarder) Send(ctx context.Context, reading *dto.MuseData) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("relay responded %s", resp.Status)
	}
	return nil
}

// Bridge ties the UDP listener to the aggregator and forwarder.
type Bridge struct {
	Aggregator *Aggregator
	Forwarder  *Forwarder
	Logger     *slog.Logger
}

// Serve reads packets from conn until ctx is done.
func (b *Bridge) Serve(ctx context.Context, conn net.PacketConn) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 65535)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msgs, err := Decode(buf[:n])
		if err != nil {
			b.Logger.Debug("bad osc packet", "from", addr.String(), "error", err)
			continue
		}
		for _, m := range msgs {
			reading, ok := b.Aggregator.Observe(m, time.Now())
			if !ok {
				continue
			}
			if err := b.Forwarder.Send(ctx, reading); err != nil {
				b.Logger.Warn("forward muse data failed", "error", err)
				continue
			}
			b.Logger.Debug("sent muse data")
		}
	}
}

// ListenAndServe opens a UDP socket on addr and serves it.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	b.Logger.Info("OSC bridge listening", "addr", conn.LocalAddr().String())
	return b.Serve(ctx, conn)
}
