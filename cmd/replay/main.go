// Command replay plays a recorded tracking session against a running web
// server. The input holds one JSON sample per line, as sent by the page:
//
//	{"x":0.5,"y":0.5,"scale":0.3,"t":0.016,"detected":true}
//
// Samples are paced by their timestamps. The session is started before the
// first sample and every event the server sends back is printed.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/logging"
	"github.com/tomz197/nosecatch/internal/tracking"
	"github.com/tomz197/nosecatch/internal/web"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "web server address")
	file := flag.String("file", "", "JSON-lines sample file (default stdin)")
	name := flag.String("name", "", "save the final score under this name")
	flag.Parse()

	log, err := logging.New(logging.Config{Level: "info", Console: true}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	in := io.Reader(os.Stdin)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal("failed to open samples", zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	samples, err := readSamples(in)
	if err != nil {
		log.Fatal("failed to read samples", zap.Error(err))
	}
	if err := replay(*addr, samples, *name, log); err != nil {
		log.Fatal("replay failed", zap.Error(err))
	}
}

// readSamples parses JSON lines, skipping blank ones.
func readSamples(r io.Reader) ([]tracking.Sample, error) {
	var out []tracking.Sample
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var s tracking.Sample
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func replay(addr string, samples []tracking.Sample, name string, log *zap.Logger) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/play"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}
	defer conn.Close()

	ended := make(chan int, 1)
	go readEvents(conn, ended, log)

	// Twice: once to leave the menu and once for the tutorial.
	for i := 0; i < 2; i++ {
		if err := write(conn, web.TypeStart, nil); err != nil {
			return err
		}
	}

	start := time.Now()
	for _, s := range samples {
		if wait := time.Duration(s.Time*float64(time.Second)) - time.Since(start); wait > 0 {
			time.Sleep(wait)
		}
		if err := write(conn, web.TypeSample, s); err != nil {
			return err
		}
	}
	log.Info("all samples sent", zap.Int("samples", len(samples)))

	select {
	case score := <-ended:
		log.Info("game over", zap.Int("score", score))
		if name != "" {
			if err := write(conn, web.TypeSave, web.SaveData{Name: name}); err != nil {
				return err
			}
			time.Sleep(time.Second)
		}
	case <-time.After(2 * time.Second):
		log.Info("recording ended before the game did")
	}

	return conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func write(conn *websocket.Conn, t web.MessageType, data any) error {
	msg, err := web.NewMessage(t, data)
	if err != nil {
		return err
	}
	b, err := msg.Bytes()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

func readEvents(conn *websocket.Conn, ended chan<- int, log *zap.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Debug("read ended", zap.Error(err))
			}
			return
		}
		msg, err := web.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case web.TypeEvent:
			var ev struct {
				Name    string          `json:"name"`
				Payload json.RawMessage `json:"payload"`
			}
			if msg.ParseData(&ev) != nil {
				continue
			}
			log.Info(ev.Name, zap.ByteString("payload", ev.Payload))
			if ev.Name == "game_ended" {
				var end struct {
					Score int `json:"score"`
				}
				_ = json.Unmarshal(ev.Payload, &end)
				select {
				case ended <- end.Score:
				default:
				}
			}
		case web.TypeStatus, web.TypeError:
			log.Info(string(msg.Type), zap.ByteString("data", msg.Data))
		}
	}
}
