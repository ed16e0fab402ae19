// linewatch follows a running vehicle's dashboard and prints each frame's
// steering decision as it happens.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-linefollow/internal/config"
	"github.com/teslashibe/go-linefollow/internal/httpc"
	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/web"
)

const pingInterval = 5 * time.Second

func main() {
	addr := flag.String("addr", config.String(config.EnvWatchAddr, "localhost:8080"), "Dashboard host:port (LINE_WATCH_ADDR)")
	changesOnly := flag.Bool("changes", false, "Only print frames where the command changes")
	tune := flag.String("tune", "", `Tuning to apply before watching, e.g. '{"slope_threshold":0.2}'`)
	flag.Parse()

	log.Init(config.LogLevel("info"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	base := "http://" + *addr
	if *tune != "" {
		if err := applyTuning(ctx, base, *tune); err != nil {
			log.Error("tuning rejected", "error", err)
			os.Exit(1)
		}
	}
	printStatus(ctx, base)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/telemetry"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		log.Error("dial failed", "url", u.String(), "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("watching", "url", u.String())

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()
	go pinger(ctx, conn)

	w := &watcher{changesOnly: *changesOnly}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Error("connection lost", "error", err)
				os.Exit(1)
			}
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Debug("skipping message", "error", err)
			continue
		}
		w.handle(msg)
	}
}

func applyTuning(ctx context.Context, base, raw string) error {
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return fmt.Errorf("parse -tune: %w", err)
	}
	var applied follower.Tuning
	if err := httpc.PostJSON(ctx, base+"/api/tuning", body, &applied); err != nil {
		return err
	}
	fmt.Printf("tuning queued: slope<%.3f debounce=%v(%d) boost=%v\n",
		applied.SlopeThreshold, applied.Debounce, applied.DebounceThreshold, applied.Boost)
	return nil
}

func printStatus(ctx context.Context, base string) {
	var status web.StatusResponse
	if err := httpc.GetJSON(ctx, base+"/api/status", &status); err != nil {
		log.Warn("status unavailable", "error", err)
		return
	}
	s := status.Stats
	fmt.Printf("run %s since %s: %d frames, %d skipped, %d transport errors, %d stage errors\n",
		s.RunID, s.Started.Format(time.TimeOnly), s.Frames, s.Skipped, s.TransportErrors, s.StageErrors)
}

// pinger measures round trip time to the dashboard. Only this goroutine
// writes data frames, as gorilla connections allow one writer.
func pinger(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			msg, err := protocol.NewPingMessage(uuid.NewString())
			if err != nil {
				continue
			}
			b, err := msg.Bytes()
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

type watcher struct {
	changesOnly bool
	last        string
}

func (w *watcher) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeTelemetry:
		var t follower.Telemetry
		if err := msg.ParseData(&t); err != nil {
			log.Debug("bad telemetry", "error", err)
			return
		}
		cmd := string(t.Command)
		if w.changesOnly && cmd == w.last && t.Error == "" {
			return
		}
		w.last = cmd
		fmt.Printf("#%-6d %3d pts  slope %+7.3f  raw %-10s stable %-10s pending %d  %-10s %s %s\n",
			t.Frame, t.Points, t.Slope, t.Raw, t.Stable, t.Pending, cmd, t.Response, t.Error)

	case protocol.TypeTuning:
		var tuning follower.Tuning
		if err := msg.ParseData(&tuning); err == nil {
			fmt.Printf("tuning: slope<%.3f debounce=%v(%d) boost=%v\n",
				tuning.SlopeThreshold, tuning.Debounce, tuning.DebounceThreshold, tuning.Boost)
		}

	case protocol.TypePong:
		if pong, err := msg.GetPongData(); err == nil {
			log.Debug("pong", "latency_ms", pong.LatencyMs)
		}
	}
}
